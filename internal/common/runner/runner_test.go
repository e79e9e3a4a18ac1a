package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunnerOutput(t *testing.T) {
	r := NewRunner()

	t.Run("successful command returns stdout", func(t *testing.T) {
		out, err := r.Output(context.Background(), "sh", "-c", "printf 'a\\nb\\n'")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "a\nb\n" {
			t.Errorf("expected %q, got %q", "a\nb\n", out)
		}
	})

	t.Run("failing command keeps stdout and exit code", func(t *testing.T) {
		out, err := r.Output(context.Background(), "sh", "-c", "echo pkg.x86_64; echo oops >&2; exit 100")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("expected ErrCommandFailed, got %v", err)
		}
		if code := ExitCode(err); code != 100 {
			t.Errorf("expected exit code 100, got %d", code)
		}
		if !strings.Contains(out, "pkg.x86_64") {
			t.Errorf("expected stdout to be preserved, got %q", out)
		}

		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected *CommandError, got %T", err)
		}
		if cmdErr.Stderr != "oops" {
			t.Errorf("expected stderr %q, got %q", "oops", cmdErr.Stderr)
		}
	})

	t.Run("missing executable returns ErrCommandNotFound", func(t *testing.T) {
		_, err := r.Output(context.Background(), "sysupdates-definitely-missing")
		if !errors.Is(err, ErrCommandNotFound) {
			t.Errorf("expected ErrCommandNotFound, got %v", err)
		}
	})

	t.Run("extra environment is passed through", func(t *testing.T) {
		r := NewRunner("SYSUPDATES_TEST_VAR=42")
		out, err := r.Output(context.Background(), "sh", "-c", "printf %s \"$SYSUPDATES_TEST_VAR\"")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "42" {
			t.Errorf("expected %q, got %q", "42", out)
		}
	})

	t.Run("context deadline stops the command", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := r.Output(ctx, "sh", "-c", "exec sleep 5")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
		}
	})

	t.Run("context deadline stops children of a wrapper script", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		out, err := r.Output(ctx, "sh", "-c", "sleep 3; echo done")
		elapsed := time.Since(start)

		if elapsed > 2*time.Second {
			t.Fatalf("timeout of 100ms took %s to return", elapsed)
		}
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
		}
		if strings.Contains(out, "done") {
			t.Errorf("expected the script to be killed, got output %q", out)
		}
	})
}

func TestRunnerInteractive(t *testing.T) {
	r := NewRunner()

	if err := r.Interactive(context.Background(), "sh", "-c", "exit 0"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	err := r.Interactive(context.Background(), "sh", "-c", "exit 3")
	if code := ExitCode(err); code != 3 {
		t.Errorf("expected exit code 3, got %d (%v)", code, err)
	}

	// The orphaned sleep keeps stderr open; waitDelay must still release Run.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = r.Interactive(ctx, "sh", "-c", "sleep 3; exit 0")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout of 100ms took %s to return", elapsed)
	}
	if err == nil {
		t.Error("expected error after the deadline, got nil")
	}
}

func TestRunnerLookPath(t *testing.T) {
	r := NewRunner()

	if _, err := r.LookPath("sh"); err != nil {
		t.Errorf("expected sh to be found, got %v", err)
	}

	_, err := r.LookPath("sysupdates-definitely-missing")
	if !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestExitCodeWithoutCommandError(t *testing.T) {
	if code := ExitCode(errors.New("plain")); code != -1 {
		t.Errorf("expected -1, got %d", code)
	}
	if code := ExitCode(nil); code != -1 {
		t.Errorf("expected -1, got %d", code)
	}
}
