// Package updates counts pending package updates and launches upgrades for
// the distribution package manager and the optional flatpak, snap and
// Homebrew sources.
//
// The package implements:
//   - Distribution detection from os-release and per-family command dispatch
//   - One adapter per update source, each counting lines of its native
//     "list updates" command
//   - An aggregating Checker producing the status object polled by the panel
//     widget, and an apply mode that runs the upgrade in a terminal
//
// Every external command goes through runner.Executor and is attempted once.
// Failures never propagate: they count as zero and are logged at debug level.
//
// Usage:
//
//	checker, err := updates.NewChecker(updates.Arch, updates.WithSources(updates.Flatpak))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	status := checker.Check(ctx)
//	status.WriteJSON(os.Stdout)
package updates
