package updates

import (
	"context"
	"strings"

	"github.com/hydepanel/sysupdates/internal/common/logger"
)

// acknowledgePrompt keeps the terminal open until the user confirms
const acknowledgePrompt = `printf '\nPress Enter to continue...'; read -r _`

// UpgradeSteps returns the shell commands apply mode runs, in order:
// official (through the AUR helper on Arch), then every enabled and
// installed optional source
func (c *Checker) UpgradeSteps() []string {
	steps := []string{c.family.OfficialUpgrade(c.AURHelper())}

	optional := []struct {
		source  Source
		list    ListCommand
		upgrade string
	}{
		{Flatpak, flatpakList, "flatpak update"},
		{Snap, snapList, "sudo snap refresh"},
		{Brew, brewList, "brew upgrade"},
	}
	for _, o := range optional {
		if !c.optional[o.source] {
			continue
		}
		if _, err := c.exec.LookPath(o.list.Name); err != nil {
			logger.Debug("apply: %s not installed, skipping", o.source)
			continue
		}
		steps = append(steps, o.upgrade)
	}
	return steps
}

// UpgradeScript joins the upgrade steps with the acknowledgement prompt.
// Steps are separated by ';' so a failing step does not skip the rest.
func (c *Checker) UpgradeScript() string {
	steps := append(c.UpgradeSteps(), acknowledgePrompt)
	return strings.Join(steps, "; ")
}

// Apply runs the upgrade script in the configured terminal and blocks until
// the terminal exits.
//
// The returned status is always zero: the outcome of the upgrade is not
// inspected and the next Check reports what is really left.
func (c *Checker) Apply(ctx context.Context) *Status {
	terminal, args := c.cfg.TerminalCommand()
	script := c.UpgradeScript()
	args = append(args, "sh", "-c", script)

	logger.Debug("apply: %s %s", terminal, strings.Join(args, " "))
	if err := c.exec.Interactive(ctx, terminal, args...); err != nil {
		logger.Debug("apply: terminal exited with error, reporting success anyway: %v", err)
	}

	return AppliedStatus()
}
