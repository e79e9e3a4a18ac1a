package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a cancelled command may keep its output pipes
// open through surviving children
const waitDelay = 500 * time.Millisecond

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrCommandFailed   = errors.New("command failed")
)

// CommandError describes a command that ran but did not succeed
type CommandError struct {
	Command  string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// ExitCode extracts the exit code from an error returned by Output or
// Interactive. It returns -1 if err carries no exit status.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// Runner executes commands on the host through os/exec
type Runner struct {
	env []string
}

// NewRunner creates a Runner. Extra environment entries in KEY=value form
// are appended to the inherited environment of every command.
func NewRunner(env ...string) *Runner {
	return &Runner{
		env: env,
	}
}

// LookPath reports the resolved path of an executable on PATH
func (r *Runner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Join(ErrCommandNotFound, err)
	}
	return path, nil
}

func (r *Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}
	return cmd
}

// Output runs a command to completion and returns its stdout. Cancelling
// ctx kills the command's whole process group.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args...)
	killProcessGroup(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		return stdoutBuf.String(), wrapError(ctx, name, args, stderrBuf.String(), err)
	}
	return stdoutBuf.String(), nil
}

// Interactive runs a command and blocks until it exits. The command's own
// output streams are not forwarded: whatever it shows belongs in its window.
// It stays in the caller's process group so a terminal-based command keeps
// access to the controlling tty.
func (r *Runner) Interactive(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		return wrapError(ctx, name, args, stderrBuf.String(), err)
	}
	return nil
}

func wrapError(ctx context.Context, name string, args []string, stderr string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return errors.Join(ErrCommandNotFound, err)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(err, ctxErr)
	}

	return &CommandError{
		Command:  strings.TrimSpace(name + " " + strings.Join(args, " ")),
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}
