package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydepanel/sysupdates/internal/common/config"
	"github.com/hydepanel/sysupdates/internal/common/logger"
	"github.com/hydepanel/sysupdates/internal/common/output"
	"github.com/hydepanel/sysupdates/internal/common/runner"
	"github.com/hydepanel/sysupdates/internal/updates"
)

var (
	errNoDistro      = errors.New("one of --arch, --ubuntu, --fedora, --suse or --auto is required")
	errUnexpectedArg = errors.New("unexpected arguments: only a trailing \"up\" is accepted")
	errBadFormat     = errors.New("--format must be json or text")
)

// annotationTolerateConfig marks commands that still run when the config
// file cannot be loaded
const annotationTolerateConfig = "sysupdates/tolerate-config"

// distroFlags form the mutually exclusive, required selector group
var distroFlags = []string{"arch", "ubuntu", "fedora", "suse", "auto"}

type options struct {
	arch, ubuntu, fedora, suse, auto bool
	flatpak, snap, brew              bool

	verbose    bool
	quiet      bool
	noColor    bool
	configPath string
	format     string
	timeout    time.Duration
}

// app carries everything a command needs, so tests can swap the executor
// and the output streams
type app struct {
	opts   options
	stdout io.Writer
	stderr io.Writer
	exec   runner.Executor
	detect func() (updates.Distro, error)
	cfg    *config.Config
}

func newApp(stdout, stderr io.Writer, exec runner.Executor) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		exec:   exec,
		detect: updates.DetectHostDistro,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sysupdates (--arch | --ubuntu | --fedora | --suse | --auto) [--flatpak] [--snap] [--brew] [up]",
		Short: "Count pending package updates for a status bar",
		Long: `Count pending updates from the distribution package manager, the AUR,
flatpak, snap and Homebrew, and print one JSON object for a panel widget:

  {"total":"<n>","tooltip":"<one line per source>"}

With a trailing "up", open a terminal running the upgrade instead.

Examples:
  sysupdates --arch                      Official repositories and AUR
  sysupdates --ubuntu --flatpak --snap   apt, flatpak and snap
  sysupdates --fedora --flatpak up       Upgrade dnf and flatpak packages
  sysupdates --auto --format text        Detect the distribution, print a summary`,
		Args:              modeArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runStatus,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&a.opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&a.opts.quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Config file (default ~/.config/sysupdates/config.yaml)")

	flags := cmd.Flags()
	flags.BoolVar(&a.opts.arch, "arch", false, "Arch Linux family (pacman + AUR helper)")
	flags.BoolVar(&a.opts.ubuntu, "ubuntu", false, "Debian/Ubuntu family (apt)")
	flags.BoolVar(&a.opts.fedora, "fedora", false, "Fedora family (dnf)")
	flags.BoolVar(&a.opts.suse, "suse", false, "openSUSE family (zypper)")
	flags.BoolVar(&a.opts.auto, "auto", false, "Detect the family from /etc/os-release")
	flags.BoolVar(&a.opts.flatpak, "flatpak", false, "Also check flatpak")
	flags.BoolVar(&a.opts.snap, "snap", false, "Also check snap")
	flags.BoolVar(&a.opts.brew, "brew", false, "Also check Homebrew")
	flags.StringVar(&a.opts.format, "format", "json", "Output format: json or text")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Per-command timeout, 0 waits forever (overrides config)")

	cmd.MarkFlagsMutuallyExclusive(distroFlags...)
	cmd.MarkFlagsOneRequired(distroFlags...)

	cmd.AddCommand(
		newVersionCmd(a),
		newCompletionCmd(a),
		newConfigCmd(a),
		newDetectCmd(a),
	)
	return cmd
}

// modeArgs accepts nothing (check mode) or a single "up" (apply mode)
func modeArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || (len(args) == 1 && args[0] == "up") {
		return nil
	}
	return fmt.Errorf("%w: %q", errUnexpectedArg, args)
}

// setup configures logging and loads the config for every command.
// Cobra checks flag groups only after the pre-run hooks, so an invalid
// invocation is rejected here before anything touches the filesystem.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return err
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return err
	}
	if a.opts.format != "json" && a.opts.format != "text" {
		return errBadFormat
	}

	if a.opts.verbose {
		logger.SetVerbose(true)
	}
	if a.opts.quiet {
		logger.SetQuiet(true)
	}
	if a.opts.noColor || !output.IsTerminal(a.stdout) {
		output.NoColor()
	}

	var err error
	if a.opts.configPath != "" {
		a.cfg, err = config.LoadFrom(a.opts.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		if cmd.Annotations[annotationTolerateConfig] == "" {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Warn("ignoring unreadable config: %v", err)
		a.cfg = config.Default()
	}

	if a.cfg.LogFile {
		if err := logger.Default().EnableFileLogging(); err != nil {
			logger.Warn("file logging disabled: %v", err)
		}
	}
	return nil
}

// distro resolves the selector flags. Cobra has already enforced that
// exactly one of them is set.
func (a *app) distro() (updates.Distro, error) {
	switch {
	case a.opts.arch:
		return updates.Arch, nil
	case a.opts.ubuntu:
		return updates.Debian, nil
	case a.opts.fedora:
		return updates.Fedora, nil
	case a.opts.suse:
		return updates.Suse, nil
	case a.opts.auto:
		return a.detect()
	}
	return updates.DistroUnknown, errNoDistro
}

func (a *app) timeout(cmd *cobra.Command) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") {
		return a.opts.timeout, nil
	}
	return a.cfg.TimeoutDuration()
}

func (a *app) newChecker(cmd *cobra.Command, distro updates.Distro) (*updates.Checker, error) {
	var toggles []updates.Source
	if a.opts.flatpak {
		toggles = append(toggles, updates.Flatpak)
	}
	if a.opts.snap {
		toggles = append(toggles, updates.Snap)
	}
	if a.opts.brew {
		toggles = append(toggles, updates.Brew)
	}

	timeout, err := a.timeout(cmd)
	if err != nil {
		return nil, err
	}

	return updates.NewChecker(distro,
		updates.WithExecutor(a.exec),
		updates.WithConfig(a.cfg),
		updates.WithTimeout(timeout),
		updates.WithSources(toggles...),
	)
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	distro, err := a.distro()
	if err != nil {
		return err
	}

	checker, err := a.newChecker(cmd, distro)
	if err != nil {
		return err
	}

	var status *updates.Status
	if len(args) == 1 {
		status = checker.Apply(cmd.Context())
	} else {
		status = checker.Check(cmd.Context())
	}

	if a.opts.format == "text" {
		return status.WriteText(a.stdout)
	}
	return status.WriteJSON(a.stdout)
}

// run executes the command line and returns the process exit status.
// Every failure prints the usage of the failing command to stdout.
func run(ctx context.Context, args []string, a *app) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	defer logger.Default().Close()

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		output.PrintError(a.stderr, "%v", err)
		fmt.Fprint(a.stdout, cmd.UsageString())
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdout, os.Stderr, runner.NewRunner())
	os.Exit(run(ctx, os.Args[1:], a))
}
