package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// systemdRuntimeDir is the marker directory that only exists while
// systemd is actually PID 1. Its presence distinguishes "systemctl is
// installed" from "systemd is running" (e.g. inside containers the
// binary may exist without a usable systemd).
const systemdRuntimeDir = "/run/systemd/system"

// ManagerKind identifies the service-supervision mechanism detected on
// the host. It is detected once per invocation and never changes for
// the process lifetime.
type ManagerKind int

const (
	// KindNone means no supported service manager was found.
	KindNone ManagerKind = iota

	// KindSystemd means systemctl is available and systemd is running.
	KindSystemd

	// KindSysV means the service(8) wrapper for SysV init scripts is
	// available.
	KindSysV
)

// String returns a human-readable name for logging.
func (k ManagerKind) String() string {
	switch k {
	case KindSystemd:
		return "systemd"
	case KindSysV:
		return "sysv"
	case KindNone:
		return "none"
	default:
		return "unknown"
	}
}

// Action is a service lifecycle action.
type Action string

// Supported service actions.
const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionReload  Action = "reload"
	ActionRestart Action = "restart"
)

// DetectManager probes the host for a supported service manager.
// Detection is pure: it only looks at PATH and the systemd runtime
// marker, with no side effects.
func DetectManager() ManagerKind {
	return detectManager(exec.LookPath, os.Stat)
}

// detectManager implements DetectManager with injectable probes so
// tests do not depend on the host's init system.
func detectManager(look func(string) (string, error), stat func(string) (os.FileInfo, error)) ManagerKind {
	if _, err := look("systemctl"); err == nil {
		if _, err := stat(systemdRuntimeDir); err == nil {
			return KindSystemd
		}
	}
	if _, err := look("service"); err == nil {
		return KindSysV
	}
	return KindNone
}

// Controller issues lifecycle actions against one named service.
//
// Non-zero exits from the manager are logged as warnings and returned
// in the Outcome, never as errors: a stop on an already-stopped service
// must not fail the caller. Only structural problems (no manager, no
// privilege path, unrunnable binary) surface as errors.
type Controller struct {
	// service is the managed service name, e.g. "tor".
	service string

	// kind is the detected (or injected) service manager.
	kind ManagerKind

	// runner executes the manager commands.
	runner Runner

	// logger receives warning lines for failed actions.
	logger *slog.Logger

	// detected records whether WithManagerKind bypassed detection.
	detected bool

	// euid and lookPath are seams for tests; they default to
	// os.Geteuid and exec.LookPath.
	euid     func() int
	lookPath func(string) (string, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithRunner substitutes the command runner. Tests use this to record
// issued commands instead of touching the host.
func WithRunner(r Runner) Option {
	return func(c *Controller) {
		c.runner = r
	}
}

// WithManagerKind skips detection and forces a specific manager.
func WithManagerKind(kind ManagerKind) Option {
	return func(c *Controller) {
		c.kind = kind
		c.detected = true
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller for the named service.
// It returns ErrNoServiceManager when the host has neither a running
// systemd nor the service wrapper, since no action would be possible.
func New(name string, opts ...Option) (*Controller, error) {
	c := &Controller{
		service:  name,
		runner:   ExecRunner{},
		euid:     os.Geteuid,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.detected {
		c.kind = DetectManager()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.kind == KindNone {
		return nil, ErrNoServiceManager
	}
	return c, nil
}

// Kind returns the service manager the controller operates through.
func (c *Controller) Kind() ManagerKind {
	return c.kind
}

// Service returns the managed service name.
func (c *Controller) Service() string {
	return c.service
}

// Action performs one lifecycle action against the managed service.
//
// When the caller is not root the command is prefixed with sudo; if
// sudo is unavailable the call fails with ErrPrivilegeRequired before
// anything is executed. A manager that runs but exits non-zero is a
// warning, not an error: the Outcome carries the details and the caller
// decides what it means in context.
func (c *Controller) Action(ctx context.Context, action Action) (Outcome, error) {
	argv := c.command(action)

	if c.euid() != 0 {
		if _, err := c.lookPath("sudo"); err != nil {
			return Outcome{}, ErrPrivilegeRequired
		}
		argv = append([]string{"sudo"}, argv...)
	}

	out, err := c.runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return out, fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	if out.ExitCode != 0 {
		c.logger.Warn("service action returned non-zero exit",
			"service", c.service,
			"action", string(action),
			"exit_code", out.ExitCode,
			"stderr", strings.TrimSpace(out.Stderr),
		)
	}
	return out, nil
}

// command builds the manager-specific argument vector.
// systemctl puts the action before the unit; service(8) reverses them.
func (c *Controller) command(action Action) []string {
	if c.kind == KindSysV {
		return []string{"service", c.service, string(action)}
	}
	return []string{"systemctl", string(action), c.service}
}
