package updates

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrUnknownDistro is returned when no supported distribution family matches
	ErrUnknownDistro = errors.New("unknown distribution")
)

// Distro identifies a distribution family. It is selected once at startup.
type Distro int

const (
	DistroUnknown Distro = iota
	Arch
	Debian
	Fedora
	Suse
)

var distroNames = map[Distro]string{
	Arch:   "arch",
	Debian: "debian",
	Fedora: "fedora",
	Suse:   "suse",
}

func (d Distro) String() string {
	if name, ok := distroNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDistro maps a family or distribution name to a Distro
func ParseDistro(name string) (Distro, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	switch {
	case id == "arch" || id == "archlinux" || id == "manjaro" || id == "endeavouros" ||
		id == "cachyos" || id == "garuda" || id == "artix":
		return Arch, nil
	case id == "debian" || id == "ubuntu" || id == "linuxmint" || id == "pop" ||
		id == "elementary" || id == "zorin" || id == "raspbian":
		return Debian, nil
	case id == "fedora" || id == "rhel" || id == "centos" || id == "rocky" ||
		id == "almalinux" || id == "nobara":
		return Fedora, nil
	case id == "suse" || id == "sles" || strings.HasPrefix(id, "opensuse"):
		return Suse, nil
	}
	return DistroUnknown, fmt.Errorf("%w: %q", ErrUnknownDistro, name)
}

// OSReleasePaths lists the os-release locations in lookup order
var OSReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// ParseOSRelease reads KEY=value pairs from an os-release file.
// Comments and malformed lines are skipped, surrounding quotes stripped.
func ParseOSRelease(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		fields[strings.TrimSpace(key)] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// DetectDistro picks the family from os-release fields, trying ID first and
// then every ID_LIKE entry in order
func DetectDistro(osRelease map[string]string) (Distro, error) {
	ids := []string{osRelease["ID"]}
	ids = append(ids, strings.Fields(osRelease["ID_LIKE"])...)

	for _, id := range ids {
		if id == "" {
			continue
		}
		if d, err := ParseDistro(id); err == nil {
			return d, nil
		}
	}
	return DistroUnknown, fmt.Errorf("%w: ID=%q ID_LIKE=%q", ErrUnknownDistro, osRelease["ID"], osRelease["ID_LIKE"])
}

// DetectHostDistro detects the family of the running system
func DetectHostDistro() (Distro, error) {
	var lastErr error
	for _, path := range OSReleasePaths {
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		fields, err := ParseOSRelease(f)
		f.Close()
		if err != nil {
			return DistroUnknown, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return DetectDistro(fields)
	}
	return DistroUnknown, errors.Join(ErrUnknownDistro, lastErr)
}
