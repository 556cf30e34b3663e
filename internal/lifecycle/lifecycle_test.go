package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/safe-acid/tornet/internal/service"
)

// fakeStopper records service actions.
type fakeStopper struct {
	actions []service.Action
	err     error
}

func (f *fakeStopper) Action(_ context.Context, a service.Action) (service.Outcome, error) {
	f.actions = append(f.actions, a)
	return service.Outcome{}, f.err
}

// fakeRunner replays one pgrep outcome.
type fakeRunner struct {
	outcome service.Outcome
	err     error
}

func (f *fakeRunner) Run(context.Context, string, ...string) (service.Outcome, error) {
	return f.outcome, f.err
}

func newTestManager(ctl *fakeStopper, runner service.Runner) (*Manager, *[]int) {
	m := NewManager(ctl, "tornet",
		WithRunner(runner),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	var signaled []int
	m.signalProc = func(pid int) error {
		signaled = append(signaled, pid)
		return nil
	}
	return m, &signaled
}

// TestShutdown tests the cleanup path.
func TestShutdown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stops the service and signals other instances", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{}
		runner := &fakeRunner{outcome: service.Outcome{Stdout: "101\n202\n"}}
		m, signaled := newTestManager(ctl, runner)

		m.Shutdown(ctx)

		if len(ctl.actions) != 1 || ctl.actions[0] != service.ActionStop {
			t.Errorf("expected one stop action, got %v", ctl.actions)
		}
		if len(*signaled) != 2 {
			t.Fatalf("expected 2 signaled pids, got %v", *signaled)
		}
	})

	t.Run("skips its own pid", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{}
		m, signaled := newTestManager(ctl, nil)
		m.self = 101
		m.runner = &fakeRunner{outcome: service.Outcome{Stdout: "101\n202\n"}}

		m.Shutdown(ctx)

		if len(*signaled) != 1 || (*signaled)[0] != 202 {
			t.Errorf("expected only pid 202 signaled, got %v", *signaled)
		}
	})

	t.Run("no matching processes is success", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{}
		runner := &fakeRunner{outcome: service.Outcome{ExitCode: 1}}
		m, signaled := newTestManager(ctl, runner)

		m.Shutdown(ctx)

		if len(*signaled) != 0 {
			t.Errorf("expected no pids signaled, got %v", *signaled)
		}
	})

	t.Run("missing pgrep is tolerated", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{}
		runner := &fakeRunner{err: errors.New("exec: pgrep: not found")}
		m, signaled := newTestManager(ctl, runner)

		m.Shutdown(ctx)

		if len(ctl.actions) != 1 {
			t.Errorf("service stop must still happen, got %v", ctl.actions)
		}
		if len(*signaled) != 0 {
			t.Errorf("expected no pids signaled, got %v", *signaled)
		}
	})

	t.Run("service stop failure is swallowed", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{err: errors.New("no service manager")}
		runner := &fakeRunner{outcome: service.Outcome{ExitCode: 1}}
		m, _ := newTestManager(ctl, runner)

		// Shutdown has no error return; reaching here unpanicked is the test.
		m.Shutdown(ctx)
		m.Shutdown(ctx) // and it is idempotent
	})

	t.Run("garbage in pgrep output is ignored", func(t *testing.T) {
		t.Parallel()
		ctl := &fakeStopper{}
		runner := &fakeRunner{outcome: service.Outcome{Stdout: "abc\n303\n"}}
		m, signaled := newTestManager(ctl, runner)

		m.Shutdown(ctx)

		if len(*signaled) != 1 || (*signaled)[0] != 303 {
			t.Errorf("expected only pid 303, got %v", *signaled)
		}
	})
}

// TestContext tests that the signal context is cancellable.
func TestContext(t *testing.T) {
	t.Parallel()

	ctx, stop := Context(context.Background())
	defer stop()

	if ctx.Err() != nil {
		t.Fatalf("fresh context must not be cancelled: %v", ctx.Err())
	}
	stop()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled after stop, got %v", ctx.Err())
	}
}
