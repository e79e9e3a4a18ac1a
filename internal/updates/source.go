package updates

import (
	"context"
	"slices"
	"strings"

	"github.com/hydepanel/sysupdates/internal/common/config"
	"github.com/hydepanel/sysupdates/internal/common/logger"
	"github.com/hydepanel/sysupdates/internal/common/runner"
)

// Source is one package-management ecosystem queried for pending updates
type Source int

// Sources are declared in tooltip order
const (
	Official Source = iota
	AUR
	Flatpak
	Snap
	Brew
)

// AllSources lists every source in tooltip order
var AllSources = []Source{Official, AUR, Flatpak, Snap, Brew}

// Key returns the config key of the source (glyphs and labels tables)
func (s Source) Key() string {
	switch s {
	case Official:
		return config.KeyOfficial
	case AUR:
		return config.KeyAUR
	case Flatpak:
		return config.KeyFlatpak
	case Snap:
		return config.KeySnap
	case Brew:
		return config.KeyBrew
	}
	return "unknown"
}

func (s Source) String() string {
	return s.Key()
}

// ListCommand is a native "list available updates" invocation
type ListCommand struct {
	Name string
	Args []string
	// OKExitCodes are non-zero exit codes that still mean a valid listing
	OKExitCodes []int
	// Match reports whether an output line names one pending package.
	// Nil counts every non-blank line.
	Match func(line string) bool
}

// String returns the command line
func (c ListCommand) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Count counts the pending packages in the command's output
func (c ListCommand) Count(output string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if c.Match == nil || c.Match(line) {
			n++
		}
	}
	return n
}

func (c ListCommand) acceptsExit(code int) bool {
	return slices.Contains(c.OKExitCodes, code)
}

// SourceResult is the outcome of checking one source
type SourceResult struct {
	Source    Source
	Glyph     string
	Label     string
	Count     int
	Checked   bool  // the source was selected, so it gets a tooltip line
	Installed bool  // its executable was found
	Err       error // swallowed command failure, never reported as an error
}

// Adapter checks one source for pending updates
type Adapter struct {
	Source  Source
	Enabled bool
	Command ListCommand
}

// Count is the single-source entry point: the number of pending updates,
// 0 when the source is disabled, missing or failing. Checker calls Check
// instead to keep the per-source detail for the text format.
func (a *Adapter) Count(ctx context.Context, exec runner.Executor) int {
	return a.Check(ctx, exec).Count
}

// Check runs the adapter's list command at most once
func (a *Adapter) Check(ctx context.Context, exec runner.Executor) SourceResult {
	result := SourceResult{Source: a.Source, Checked: a.Enabled}
	if !a.Enabled {
		return result
	}

	if _, err := exec.LookPath(a.Command.Name); err != nil {
		logger.Debug("%s: %s not installed, counting 0", a.Source, a.Command.Name)
		return result
	}
	result.Installed = true

	out, err := exec.Output(ctx, a.Command.Name, a.Command.Args...)
	if err != nil {
		code := runner.ExitCode(err)
		if !a.Command.acceptsExit(code) {
			// A crashed tool and an up-to-date system both read as 0 here.
			logger.Debug("%s: %q failed, counting 0: %v", a.Source, a.Command.String(), err)
			result.Err = err
			return result
		}
	}

	result.Count = a.Command.Count(out)
	logger.Debug("%s: %d pending", a.Source, result.Count)
	return result
}

// Installed reports whether the adapter's executable is on PATH
func (a *Adapter) Installed(exec runner.Executor) bool {
	_, err := exec.LookPath(a.Command.Name)
	return err == nil
}

// Optional-source list commands
var (
	flatpakList = ListCommand{
		Name: "flatpak",
		Args: []string{"remote-ls", "--updates", "--columns=application"},
	}
	snapList = ListCommand{
		Name: "snap",
		Args: []string{"refresh", "--list"},
		Match: func(line string) bool {
			return !strings.HasPrefix(line, "Name ") && !strings.HasPrefix(line, "All snaps up to date")
		},
	}
	brewList = ListCommand{
		Name: "brew",
		Args: []string{"outdated", "--quiet"},
	}
)

// aurList builds the AUR query for the given helper.
// Helpers exit 1 when nothing is out of date.
func aurList(helper string) ListCommand {
	return ListCommand{
		Name:        helper,
		Args:        []string{"-Qua"},
		OKExitCodes: []int{1},
	}
}
