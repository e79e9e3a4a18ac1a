package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydepanel/sysupdates/internal/common/output"
	"github.com/hydepanel/sysupdates/internal/updates"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Show the detected distribution and installed package managers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			distro, err := a.detect()
			if err != nil {
				return err
			}

			checker, err := updates.NewChecker(distro,
				updates.WithExecutor(a.exec),
				updates.WithConfig(a.cfg),
				updates.WithSources(updates.Flatpak, updates.Snap, updates.Brew))
			if err != nil {
				return err
			}

			lines := []string{fmt.Sprintf("distro: %s (use --%s)", distro, selectorFlag(distro))}
			if distro == updates.Arch {
				helper := checker.AURHelper()
				if helper == "" {
					helper = output.Sprint(output.Dim, "none")
				}
				lines = append(lines, "aur helper: "+helper)
			}
			for _, adapter := range checker.Adapters() {
				if adapter.Source == updates.AUR {
					continue
				}
				state := output.Sprint(output.Success, "installed")
				if !adapter.Installed(a.exec) {
					state = output.Sprint(output.Dim, "not installed")
				}
				lines = append(lines, fmt.Sprintf("%s (%s): %s", adapter.Source, adapter.Command.Name, state))
			}

			output.Box(a.stdout, "sysupdates detect", lines...)
			return nil
		},
	}
}

// selectorFlag names the CLI flag selecting distro
func selectorFlag(d updates.Distro) string {
	if d == updates.Debian {
		return "ubuntu"
	}
	return d.String()
}
