package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version information - set at build time via ldflags:
//
//	-X github.com/hydepanel/sysupdates/internal/common/version.Version=v1.2.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// resolved fills commit and date from the module's VCS stamp when the
// binary was built without ldflags (go install)
func resolved() (version, commit, date string) {
	version, commit, date = Version, Commit, BuildDate

	info, ok := readBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "unknown" {
				commit = setting.Value
			}
		case "vcs.time":
			if date == "unknown" {
				date = setting.Value
			}
		}
	}
	return
}

// Info returns formatted version information
func Info() string {
	version, commit, date := resolved()
	return fmt.Sprintf("sysupdates version %s\n  commit: %s\n  built: %s\n  go: %s\n  os/arch: %s/%s",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string
func Short() string {
	version, _, _ := resolved()
	return version
}
