package updates

import (
	"context"
	"fmt"
	"time"

	"github.com/hydepanel/sysupdates/internal/common/config"
	"github.com/hydepanel/sysupdates/internal/common/logger"
	"github.com/hydepanel/sysupdates/internal/common/runner"
)

// Checker aggregates the sources selected for one distribution.
// Adapters run one after another; nothing runs in parallel.
type Checker struct {
	// family dispatches the official source
	family Family
	// optional holds the flatpak/snap/brew toggles
	optional map[Source]bool
	// exec runs every external command
	exec runner.Executor
	// cfg supplies glyphs, labels, AUR helpers and the terminal
	cfg *config.Config
	// timeout bounds each list command; zero waits forever
	timeout time.Duration

	aurHelper    string
	aurHelperSet bool
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker) error

// WithExecutor sets the command executor
func WithExecutor(exec runner.Executor) CheckerOption {
	return func(c *Checker) error {
		c.exec = exec
		return nil
	}
}

// WithConfig sets the configuration
func WithConfig(cfg *config.Config) CheckerOption {
	return func(c *Checker) error {
		c.cfg = cfg
		return nil
	}
}

// WithTimeout bounds every list command
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithSources enables optional sources. Official and AUR are implied by
// the distribution and rejected here.
func WithSources(sources ...Source) CheckerOption {
	return func(c *Checker) error {
		for _, s := range sources {
			switch s {
			case Flatpak, Snap, Brew:
				c.optional[s] = true
			default:
				return fmt.Errorf("source %s cannot be toggled", s)
			}
		}
		return nil
	}
}

// NewChecker creates a checker for the given distribution
func NewChecker(distro Distro, opts ...CheckerOption) (*Checker, error) {
	family, err := FamilyFor(distro)
	if err != nil {
		return nil, err
	}

	checker := &Checker{
		family:   family,
		optional: make(map[Source]bool),
	}

	for _, opt := range opts {
		if err := opt(checker); err != nil {
			return nil, fmt.Errorf("failed to apply checker option: %w", err)
		}
	}

	if checker.exec == nil {
		checker.exec = runner.NewRunner()
	}
	if checker.cfg == nil {
		checker.cfg = config.Default()
	}

	return checker, nil
}

// Distro returns the checker's distribution
func (c *Checker) Distro() Distro {
	return c.family.Distro()
}

// Enabled reports whether an optional source was toggled on
func (c *Checker) Enabled(s Source) bool {
	return c.optional[s]
}

// AURHelper returns the first installed helper from the configured
// preference list, or "" when none is installed or the distro has no AUR
func (c *Checker) AURHelper() string {
	if c.aurHelperSet {
		return c.aurHelper
	}
	c.aurHelperSet = true

	if !c.family.SupportsAUR() {
		return ""
	}
	for _, helper := range c.cfg.AURHelpers {
		if _, err := c.exec.LookPath(helper); err == nil {
			c.aurHelper = helper
			break
		}
	}
	if c.aurHelper == "" {
		logger.Debug("aur: no helper installed from %v", c.cfg.AURHelpers)
	}
	return c.aurHelper
}

// Adapters returns the adapters in tooltip order: official, AUR (Arch
// with an installed helper), flatpak, snap, brew
func (c *Checker) Adapters() []*Adapter {
	adapters := []*Adapter{
		{Source: Official, Enabled: true, Command: c.family.OfficialList()},
	}

	if helper := c.AURHelper(); helper != "" {
		adapters = append(adapters, &Adapter{Source: AUR, Enabled: true, Command: aurList(helper)})
	}

	adapters = append(adapters,
		&Adapter{Source: Flatpak, Enabled: c.optional[Flatpak], Command: flatpakList},
		&Adapter{Source: Snap, Enabled: c.optional[Snap], Command: snapList},
		&Adapter{Source: Brew, Enabled: c.optional[Brew], Command: brewList},
	)
	return adapters
}

// Check runs every selected adapter once and aggregates the counts
func (c *Checker) Check(ctx context.Context) *Status {
	adapters := c.Adapters()
	results := make([]SourceResult, 0, len(adapters))

	for _, a := range adapters {
		result := c.checkOne(ctx, a)
		result.Glyph = c.cfg.Glyph(a.Source.Key())
		result.Label = c.cfg.Label(a.Source.Key())
		results = append(results, result)
	}

	status := NewStatus(results)
	logger.Debug("%s: %d pending in total", c.Distro(), status.Total)
	return status
}

func (c *Checker) checkOne(ctx context.Context, a *Adapter) SourceResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return a.Check(ctx, c.exec)
}
