package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/safe-acid/tornet/internal/service"
)

// Stopper is the slice of the service controller shutdown needs.
type Stopper interface {
	Action(ctx context.Context, action service.Action) (service.Outcome, error)
}

// Context returns a context cancelled by the standard interrupt and
// quit signals. The caller runs the whole program under it; the
// scheduler and every blocking call observe cancellation through it
// instead of registering their own handlers.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

// Manager performs the shutdown cleanup.
type Manager struct {
	controller Stopper
	runner     service.Runner
	tool       string
	logger     *slog.Logger

	// signalProc sends SIGTERM to a pid; a seam for tests.
	signalProc func(pid int) error

	// self is this process's pid, excluded from stray-process kills.
	self int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRunner substitutes the command runner used for pgrep.
func WithRunner(r service.Runner) ManagerOption {
	return func(m *Manager) {
		m.runner = r
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a shutdown manager for the named tool.
func NewManager(controller Stopper, tool string, opts ...ManagerOption) *Manager {
	m := &Manager{
		controller: controller,
		runner:     service.ExecRunner{},
		tool:       tool,
		self:       os.Getpid(),
		signalProc: func(pid int) error {
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			return proc.Signal(syscall.SIGTERM)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Shutdown stops the managed service and terminates any other process
// instances of the tool. Both halves run concurrently and are best
// effort: failures are logged, never returned. Calling Shutdown more
// than once, or before anything was started, is safe.
func (m *Manager) Shutdown(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		if _, err := m.controller.Action(ctx, service.ActionStop); err != nil {
			m.logger.Warn("failed to stop service during shutdown", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		m.killStray(ctx)
		return nil
	})

	_ = g.Wait() //nolint:errcheck // both goroutines always return nil
	m.logger.Info("tor service and tool processes stopped", "tool", m.tool)
}

// killStray terminates other running instances of the tool, matched on
// the full command line the way the process table shows it. Our own
// pid is skipped; killing the process that is busy cleaning up would
// cut the shutdown short.
func (m *Manager) killStray(ctx context.Context) {
	out, err := m.runner.Run(ctx, "pgrep", "-f", m.tool)
	if err != nil {
		m.logger.Debug("pgrep unavailable, skipping stray process cleanup", "error", err)
		return
	}
	if out.ExitCode != 0 {
		// Exit 1 means nothing matched; that is the common case.
		return
	}
	for _, field := range strings.Fields(out.Stdout) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid == m.self {
			continue
		}
		if err := m.signalProc(pid); err != nil {
			m.logger.Debug("failed to signal stray process", "pid", pid, "error", err)
		}
	}
}
