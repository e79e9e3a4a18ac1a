package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydepanel/sysupdates/internal/common/version"
)

func newVersionCmd(a *app) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				_, err := fmt.Fprintln(a.stdout, version.Short())
				return err
			}
			_, err := fmt.Fprintln(a.stdout, version.Info())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
