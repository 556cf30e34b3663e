package service

import "errors"

// Fatal service-control errors.
//
// A service action that runs but exits non-zero is deliberately NOT an
// error: the Outcome carries the exit code and stderr, and callers treat
// it as a warning. The sentinels below cover the cases where no action
// is possible at all, which the CLI maps to stable exit codes.
var (
	// ErrNoServiceManager is returned when neither systemctl (with a
	// running systemd) nor the service wrapper is available.
	ErrNoServiceManager = errors.New("no supported service manager found (systemctl or service)")

	// ErrPrivilegeRequired is returned when the caller is not root and
	// no sudo binary exists to elevate the service command.
	ErrPrivilegeRequired = errors.New("root privileges required but sudo not available: run as root or install sudo")
)
