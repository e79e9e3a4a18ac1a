package updates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydepanel/sysupdates/internal/common/config"
	"github.com/hydepanel/sysupdates/internal/common/runner"
)

// scenario describes one simulated host
type scenario struct {
	distro    Distro
	enabled   map[Source]bool
	installed map[Source]bool
	counts    map[Source]int
}

// fakeListing renders n pending packages the way cmd would print them
func fakeListing(cmd string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		switch cmd {
		case "apt-get":
			fmt.Fprintf(&b, "Inst pkg%d [1.0] (1.1 Debian:12/stable [amd64])\n", i)
		case "dnf":
			fmt.Fprintf(&b, "pkg%d.x86_64 1.1-1.fc40 updates\n", i)
		case "zypper":
			fmt.Fprintf(&b, "v | repo-oss | pkg%d | 1.0 | 1.1 | x86_64\n", i)
		default:
			fmt.Fprintf(&b, "pkg%d 1.0 -> 1.1\n", i)
		}
	}
	return b.String()
}

// executables maps each source to the executable the scenario installs
func executables(d Distro) map[Source]string {
	family, _ := FamilyFor(d)
	return map[Source]string{
		Official: family.OfficialList().Name,
		AUR:      "paru",
		Flatpak:  "flatpak",
		Snap:     "snap",
		Brew:     "brew",
	}
}

func (s scenario) mock() *runner.MockRunner {
	mock := runner.NewMockRunner()
	bySource := executables(s.distro)
	byName := make(map[string]Source)
	for source, name := range bySource {
		byName[name] = source
		if s.installed[source] {
			mock.Installed[name] = true
		}
	}
	mock.OutputFunc = func(name string, args ...string) (string, error) {
		return fakeListing(name, s.counts[byName[name]]), nil
	}
	return mock
}

func (s scenario) checker(t *testing.T, exec runner.Executor) *Checker {
	var toggles []Source
	for _, source := range []Source{Flatpak, Snap, Brew} {
		if s.enabled[source] {
			toggles = append(toggles, source)
		}
	}
	checker, err := NewChecker(s.distro, WithExecutor(exec), WithSources(toggles...))
	require.NoError(t, err)
	return checker
}

// expectedTotal sums the counts of every source that is checked and installed
func (s scenario) expectedTotal() int {
	total := 0
	if s.installed[Official] {
		total += s.counts[Official]
	}
	if s.distro == Arch && s.installed[AUR] {
		total += s.counts[AUR]
	}
	for _, source := range []Source{Flatpak, Snap, Brew} {
		if s.enabled[source] && s.installed[source] {
			total += s.counts[source]
		}
	}
	return total
}

func genScenario() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(Arch, Debian, Fedora, Suse),
		gen.SliceOfN(3, gen.Bool()),
		gen.SliceOfN(5, gen.Bool()),
		gen.SliceOfN(5, gen.IntRange(0, 40)),
	).Map(func(values []interface{}) scenario {
		toggles := values[1].([]bool)
		installed := values[2].([]bool)
		counts := values[3].([]int)

		s := scenario{
			distro: values[0].(Distro),
			enabled: map[Source]bool{
				Flatpak: toggles[0],
				Snap:    toggles[1],
				Brew:    toggles[2],
			},
			installed: make(map[Source]bool),
			counts:    make(map[Source]int),
		}
		for i, source := range AllSources {
			s.installed[source] = installed[i]
			s.counts[source] = counts[i]
		}
		return s
	})
}

func TestCheckerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total is the sum of per-source counts and never negative", prop.ForAll(
		func(s scenario) bool {
			status := s.checker(t, s.mock()).Check(context.Background())
			sum := 0
			for _, r := range status.Results {
				sum += r.Count
			}
			return status.Total == s.expectedTotal() && status.Total == sum && status.Total >= 0
		},
		genScenario(),
	))

	properties.Property("omitted toggles contribute nothing and run nothing", prop.ForAll(
		func(s scenario) bool {
			mock := s.mock()
			status := s.checker(t, mock).Check(context.Background())

			names := executables(s.distro)
			for _, source := range []Source{Flatpak, Snap, Brew} {
				if s.enabled[source] {
					continue
				}
				for _, call := range mock.Calls() {
					if call.Name == names[source] {
						return false
					}
				}
				for _, r := range status.Results {
					if r.Source == source {
						return false
					}
				}
			}
			return true
		},
		genScenario(),
	))

	properties.Property("tooltip lines follow official, AUR, flatpak, snap, brew", prop.ForAll(
		func(s scenario) bool {
			status := s.checker(t, s.mock()).Check(context.Background())

			var expected []Source
			expected = append(expected, Official)
			if s.distro == Arch && s.installed[AUR] {
				expected = append(expected, AUR)
			}
			for _, source := range []Source{Flatpak, Snap, Brew} {
				if s.enabled[source] {
					expected = append(expected, source)
				}
			}

			lines := strings.Split(status.Tooltip, "\n")
			if len(lines) != len(expected) || len(status.Results) != len(expected) {
				return false
			}
			for i, source := range expected {
				if status.Results[i].Source != source {
					return false
				}
				if lines[i] != TooltipLine(status.Results[i]) {
					return false
				}
			}
			return true
		},
		genScenario(),
	))

	properties.Property("every external command runs at most once", prop.ForAll(
		func(s scenario) bool {
			mock := s.mock()
			s.checker(t, mock).Check(context.Background())

			seen := make(map[string]bool)
			for _, call := range mock.Calls() {
				if seen[call.Name] {
					return false
				}
				seen[call.Name] = true
			}
			return true
		},
		genScenario(),
	))

	properties.TestingRun(t)
}

func TestCheckNothingInstalled(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name     string
		distro   Distro
		toggles  []Source
		expected string
	}{
		{
			name:     "arch without toggles",
			distro:   Arch,
			expected: cfg.Glyph("official") + " Official 0",
		},
		{
			name:     "ubuntu with flatpak and brew",
			distro:   Debian,
			toggles:  []Source{Flatpak, Brew},
			expected: cfg.Glyph("official") + " Official 0\n" + cfg.Glyph("flatpak") + " Flatpak 0\n" + cfg.Glyph("brew") + " Brew 0",
		},
		{
			name:     "suse with snap",
			distro:   Suse,
			toggles:  []Source{Snap},
			expected: cfg.Glyph("official") + " Official 0\n" + cfg.Glyph("snap") + " Snap 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := runner.NewMockRunner()
			checker, err := NewChecker(tt.distro, WithExecutor(mock), WithSources(tt.toggles...))
			require.NoError(t, err)

			status := checker.Check(context.Background())
			assert.Equal(t, 0, status.Total)
			assert.Equal(t, tt.expected, status.Tooltip)
			assert.Empty(t, mock.Calls(), "no command may run when nothing is installed")

			var buf bytes.Buffer
			require.NoError(t, status.WriteJSON(&buf))
			assert.Equal(t, `{"total":"0","tooltip":"`+strings.ReplaceAll(tt.expected, "\n", `\n`)+`"}`+"\n", buf.String())
		})
	}
}

func TestAURHelperPreference(t *testing.T) {
	tests := []struct {
		name      string
		distro    Distro
		installed []string
		helpers   []string
		expected  string
	}{
		{"paru preferred", Arch, []string{"paru", "yay"}, nil, "paru"},
		{"yay fallback", Arch, []string{"yay"}, nil, "yay"},
		{"none installed", Arch, nil, nil, ""},
		{"configured order", Arch, []string{"paru", "yay"}, []string{"yay", "paru"}, "yay"},
		{"not arch", Fedora, []string{"paru"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.helpers != nil {
				cfg.AURHelpers = tt.helpers
			}
			checker, err := NewChecker(tt.distro,
				WithExecutor(runner.NewMockRunner(tt.installed...)),
				WithConfig(cfg))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, checker.AURHelper())
		})
	}
}

func TestCheckUsesAURHelperQuery(t *testing.T) {
	mock := runner.NewMockRunner("checkupdates", "yay")
	mock.OutputFunc = func(name string, args ...string) (string, error) {
		if name == "yay" {
			assert.Equal(t, []string{"-Qua"}, args)
			return "foo 1 -> 2\nbar 1 -> 2\n", nil
		}
		return "", &runner.CommandError{Command: name, ExitCode: 2, Err: runner.ErrCommandFailed}
	}

	checker, err := NewChecker(Arch, WithExecutor(mock))
	require.NoError(t, err)

	status := checker.Check(context.Background())
	require.Len(t, status.Results, 2)
	assert.Equal(t, AUR, status.Results[1].Source)
	assert.Equal(t, 2, status.Total)
	assert.True(t, strings.HasSuffix(status.Tooltip, "AUR 2"))
}

func TestCheckerOptions(t *testing.T) {
	_, err := NewChecker(DistroUnknown)
	assert.ErrorIs(t, err, ErrUnknownDistro)

	_, err = NewChecker(Arch, WithSources(Official))
	assert.Error(t, err)

	_, err = NewChecker(Arch, WithTimeout(-1))
	assert.Error(t, err)

	checker, err := NewChecker(Debian, WithSources(Snap))
	require.NoError(t, err)
	assert.Equal(t, Debian, checker.Distro())
	assert.True(t, checker.Enabled(Snap))
	assert.False(t, checker.Enabled(Flatpak))
}

func TestCheckTimeoutCountsZero(t *testing.T) {
	mock := runner.NewMockRunner("checkupdates")
	mock.OutputFunc = func(name string, args ...string) (string, error) {
		return "", errors.Join(runner.ErrCommandFailed, errors.New("signal: killed"))
	}

	checker, err := NewChecker(Arch, WithExecutor(mock), WithTimeout(1))
	require.NoError(t, err)

	status := checker.Check(context.Background())
	assert.Equal(t, 0, status.Total)
	require.Len(t, status.Results, 1)
	assert.Error(t, status.Results[0].Err)
}
