package runner

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// Call records a single command issued through MockRunner
type Call struct {
	Name string
	Args []string
}

// String returns the command line of the call
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior.
// Without a LookPathFunc, executables listed in Installed are found and
// everything else is reported missing.
type MockRunner struct {
	LookPathFunc    func(name string) (string, error)
	OutputFunc      func(name string, args ...string) (string, error)
	InteractiveFunc func(name string, args ...string) error
	Installed       map[string]bool

	mu    sync.Mutex
	calls []Call
}

// NewMockRunner creates a MockRunner reporting the given executables as installed
func NewMockRunner(installed ...string) *MockRunner {
	m := &MockRunner{Installed: make(map[string]bool)}
	for _, name := range installed {
		m.Installed[name] = true
	}
	return m
}

// LookPath reports the resolved path of an executable
func (m *MockRunner) LookPath(name string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(name)
	}
	if m.Installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Output records the call and returns the configured result
func (m *MockRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	m.record(name, args)
	if m.OutputFunc != nil {
		return m.OutputFunc(name, args...)
	}
	return "", nil
}

// Interactive records the call and returns the configured result
func (m *MockRunner) Interactive(_ context.Context, name string, args ...string) error {
	m.record(name, args)
	if m.InteractiveFunc != nil {
		return m.InteractiveFunc(name, args...)
	}
	return nil
}

// Calls returns every command issued so far, in order
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockRunner) record(name string, args []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Name: name, Args: append([]string(nil), args...)})
}

// Ensure MockRunner implements Executor interface
var _ Executor = (*MockRunner)(nil)
