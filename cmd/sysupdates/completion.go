package main

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sysupdates.

To load completions:

Bash:
  $ source <(sysupdates completion bash)
  # To load completions for each session, execute once:
  $ sysupdates completion bash > /etc/bash_completion.d/sysupdates

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ sysupdates completion zsh > "${fpath[1]}/_sysupdates"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sysupdates completion fish | source
  # To load completions for each session, execute once:
  $ sysupdates completion fish > ~/.config/fish/completions/sysupdates.fish

PowerShell:
  PS> sysupdates completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(a.stdout, true)
			case "zsh":
				return root.GenZshCompletion(a.stdout)
			case "fish":
				return root.GenFishCompletion(a.stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(a.stdout)
			}
			return nil
		},
	}
}
