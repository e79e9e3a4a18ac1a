package runner

import "context"

// Executor defines the interface for running external commands.
// This interface allows for mocking package manager invocations in tests.
type Executor interface {
	// LookPath reports the resolved path of an executable on PATH
	LookPath(name string) (string, error)

	// Output runs a command to completion and returns its stdout.
	// Stdout is returned even when the command fails so callers can inspect
	// commands that signal results through their exit status.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// Interactive runs a command that owns its own window (a terminal
	// emulator) and blocks until it exits
	Interactive(ctx context.Context, name string, args ...string) error
}
