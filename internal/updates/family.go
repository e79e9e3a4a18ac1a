package updates

import (
	"fmt"
	"strings"
)

// Family is the per-distribution variant of the official update source
type Family interface {
	// Distro returns the family's identifier
	Distro() Distro
	// OfficialList returns the command listing pending official updates
	OfficialList() ListCommand
	// OfficialUpgrade returns the shell command upgrading official packages.
	// aurHelper is empty when no AUR helper is installed.
	OfficialUpgrade(aurHelper string) string
	// SupportsAUR reports whether the AUR source applies
	SupportsAUR() bool
}

// FamilyFor returns the Family implementing d
func FamilyFor(d Distro) (Family, error) {
	switch d {
	case Arch:
		return archFamily{}, nil
	case Debian:
		return debianFamily{}, nil
	case Fedora:
		return fedoraFamily{}, nil
	case Suse:
		return suseFamily{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownDistro, d)
}

type archFamily struct{}

func (archFamily) Distro() Distro    { return Arch }
func (archFamily) SupportsAUR() bool { return true }

// checkupdates exits 2 when there is nothing to update
func (archFamily) OfficialList() ListCommand {
	return ListCommand{
		Name:        "checkupdates",
		OKExitCodes: []int{2},
	}
}

func (archFamily) OfficialUpgrade(aurHelper string) string {
	if aurHelper != "" {
		return aurHelper + " -Syu"
	}
	return "sudo pacman -Syu"
}

type debianFamily struct{}

func (debianFamily) Distro() Distro    { return Debian }
func (debianFamily) SupportsAUR() bool { return false }

// Simulated upgrade; every "Inst" line is one package
func (debianFamily) OfficialList() ListCommand {
	return ListCommand{
		Name: "apt-get",
		Args: []string{"-s", "-o", "Debug::NoLocking=true", "upgrade"},
		Match: func(line string) bool {
			return strings.HasPrefix(line, "Inst ")
		},
	}
}

func (debianFamily) OfficialUpgrade(string) string {
	return "sudo apt-get update && sudo apt-get upgrade"
}

type fedoraFamily struct{}

func (fedoraFamily) Distro() Distro    { return Fedora }
func (fedoraFamily) SupportsAUR() bool { return false }

// dnf check-update exits 100 when updates are available. Package rows start
// with name.arch; indented rows belong to the obsoletes section.
func (fedoraFamily) OfficialList() ListCommand {
	return ListCommand{
		Name:        "dnf",
		Args:        []string{"check-update", "-q"},
		OKExitCodes: []int{100},
		Match: func(line string) bool {
			if line[0] == ' ' || line[0] == '\t' {
				return false
			}
			fields := strings.Fields(line)
			return len(fields) >= 2 && strings.Contains(fields[0], ".")
		},
	}
}

func (fedoraFamily) OfficialUpgrade(string) string {
	return "sudo dnf upgrade"
}

type suseFamily struct{}

func (suseFamily) Distro() Distro    { return Suse }
func (suseFamily) SupportsAUR() bool { return false }

// zypper prints a table; update rows start with the "v" status column
func (suseFamily) OfficialList() ListCommand {
	return ListCommand{
		Name: "zypper",
		Args: []string{"--non-interactive", "--quiet", "list-updates"},
		Match: func(line string) bool {
			return strings.HasPrefix(line, "v ")
		},
	}
}

func (suseFamily) OfficialUpgrade(string) string {
	return "sudo zypper update"
}
