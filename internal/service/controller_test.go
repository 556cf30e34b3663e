package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

// fakeRunner records every command it is asked to run and replays
// canned outcomes.
type fakeRunner struct {
	calls    [][]string
	outcome  Outcome
	runErr   error
	outcomes []Outcome // when set, consumed one per call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Outcome, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.outcomes) > 0 {
		out := f.outcomes[0]
		f.outcomes = f.outcomes[1:]
		return out, f.runErr
	}
	return f.outcome, f.runErr
}

// asRoot makes the controller believe it already has privileges so the
// issued command is not prefixed with sudo.
func asRoot(c *Controller) {
	c.euid = func() int { return 0 }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDetectManager tests supervision mechanism detection.
func TestDetectManager(t *testing.T) {
	t.Parallel()

	haveAll := func(string) (string, error) { return "/usr/bin/x", nil }
	haveNone := func(string) (string, error) { return "", errors.New("not found") }
	statOK := func(string) (os.FileInfo, error) { return nil, nil }
	statMissing := func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

	tests := []struct {
		name string
		look func(string) (string, error)
		stat func(string) (os.FileInfo, error)
		want ManagerKind
	}{
		{
			name: "systemctl with running systemd",
			look: haveAll,
			stat: statOK,
			want: KindSystemd,
		},
		{
			name: "systemctl binary without systemd runtime falls through to service",
			look: haveAll,
			stat: statMissing,
			want: KindSysV,
		},
		{
			name: "only service wrapper",
			look: func(bin string) (string, error) {
				if bin == "service" {
					return "/usr/sbin/service", nil
				}
				return "", errors.New("not found")
			},
			stat: statMissing,
			want: KindSysV,
		},
		{
			name: "nothing available",
			look: haveNone,
			stat: statMissing,
			want: KindNone,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := detectManager(tt.look, tt.stat); got != tt.want {
				t.Errorf("detectManager() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNew tests Controller construction.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("forced kind none is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := New("tor", WithManagerKind(KindNone))
		if !errors.Is(err, ErrNoServiceManager) {
			t.Errorf("expected ErrNoServiceManager, got %v", err)
		}
	})

	t.Run("forced systemd succeeds", func(t *testing.T) {
		t.Parallel()
		c, err := New("tor", WithManagerKind(KindSystemd))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Kind() != KindSystemd {
			t.Errorf("expected KindSystemd, got %v", c.Kind())
		}
		if c.Service() != "tor" {
			t.Errorf("expected service 'tor', got %q", c.Service())
		}
	})
}

// TestControllerAction tests command construction and outcome handling.
func TestControllerAction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	t.Run("systemd puts action before unit", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		c, err := New("tor",
			WithManagerKind(KindSystemd),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		asRoot(c)

		if _, err := c.Action(ctx, ActionReload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "systemctl reload tor"
		if got := strings.Join(runner.calls[0], " "); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("sysv puts unit before action", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		c, err := New("tor",
			WithManagerKind(KindSysV),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		asRoot(c)

		if _, err := c.Action(ctx, ActionRestart); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "service tor restart"
		if got := strings.Join(runner.calls[0], " "); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("non-root prefixes sudo when available", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		c, err := New("tor",
			WithManagerKind(KindSystemd),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		c.euid = func() int { return 1000 }
		c.lookPath = func(string) (string, error) { return "/usr/bin/sudo", nil }

		if _, err := c.Action(ctx, ActionStop); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "sudo systemctl stop tor"
		if got := strings.Join(runner.calls[0], " "); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("non-root without sudo is fatal before executing", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		c, err := New("tor",
			WithManagerKind(KindSystemd),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		c.euid = func() int { return 1000 }
		c.lookPath = func(string) (string, error) { return "", errors.New("not found") }

		_, err = c.Action(ctx, ActionStart)
		if !errors.Is(err, ErrPrivilegeRequired) {
			t.Errorf("expected ErrPrivilegeRequired, got %v", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("expected no command execution, got %v", runner.calls)
		}
	})

	t.Run("non-zero exit is returned as outcome not error", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{outcome: Outcome{ExitCode: 1, Stderr: "Job failed"}}
		c, err := New("tor",
			WithManagerKind(KindSystemd),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		asRoot(c)

		out, err := c.Action(ctx, ActionStop)
		if err != nil {
			t.Fatalf("expected nil error for non-zero exit, got %v", err)
		}
		if out.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", out.ExitCode)
		}
		if out.Stderr != "Job failed" {
			t.Errorf("expected stderr preserved, got %q", out.Stderr)
		}
	})

	t.Run("repeated stop stays error-free", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{outcomes: []Outcome{{}, {ExitCode: 1, Stderr: "not running"}}}
		c, err := New("tor",
			WithManagerKind(KindSysV),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		asRoot(c)

		for i := 0; i < 2; i++ {
			if _, err := c.Action(ctx, ActionStop); err != nil {
				t.Fatalf("stop #%d: unexpected error: %v", i+1, err)
			}
		}
	})

	t.Run("unstartable command surfaces as error", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{runErr: errors.New("exec: not found")}
		c, err := New("tor",
			WithManagerKind(KindSystemd),
			WithRunner(runner),
			WithLogger(discardLogger()),
		)
		if err != nil {
			t.Fatal(err)
		}
		asRoot(c)

		if _, err := c.Action(ctx, ActionStart); err == nil {
			t.Error("expected error when command cannot start")
		}
	})
}
