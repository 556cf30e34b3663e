// Package exitcode defines the stable exit codes tornet reports.
//
// Each fatal condition has its own code so shell scripts can branch on
// the failure kind. These values are a compatibility contract: once
// released they never change meaning.
package exitcode

import (
	"errors"

	"github.com/safe-acid/tornet/internal/probe"
	"github.com/safe-acid/tornet/internal/rotate"
	"github.com/safe-acid/tornet/internal/service"
	"github.com/safe-acid/tornet/internal/torrc"
)

// Exit codes.
const (
	// Success is normal termination, including interrupt-driven
	// shutdown after cleanup.
	Success = 0

	// Failure is the generic code for errors with no dedicated code.
	Failure = 1

	// PrivilegeRequired: not root and no sudo available.
	PrivilegeRequired = 2

	// NoServiceManager: neither systemctl nor service found.
	NoServiceManager = 3

	// NoPackageManager is reserved for the dependency install helper;
	// the core tool never reports it but the value stays claimed.
	NoPackageManager = 4

	// InvalidInterval: the rotation interval string did not parse.
	InvalidInterval = 8

	// NoConnectivity: the baseline internet check failed at startup.
	NoConnectivity = 9

	// TorNotInstalled: no tor binary on PATH.
	TorNotInstalled = 10

	// ConfigNotFound: no torrc at the explicit or well-known paths.
	ConfigNotFound = 20

	// ConfigReadFailed: the torrc exists but could not be read.
	ConfigReadFailed = 22

	// ConfigWriteFailed: the rewritten torrc could not be written.
	ConfigWriteFailed = 23
)

// ErrTorNotInstalled is the fatal condition for a missing tor binary.
// It lives here rather than in a package of its own because the check
// is a single LookPath in the CLI.
var ErrTorNotInstalled = errors.New("tor is not installed: install the tor package and retry")

// FromError maps an error to its exit code. Unrecognized errors get
// the generic Failure code; nil gets Success.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrPrivilegeRequired):
		return PrivilegeRequired
	case errors.Is(err, service.ErrNoServiceManager):
		return NoServiceManager
	case errors.Is(err, rotate.ErrInvalidInterval):
		return InvalidInterval
	case errors.Is(err, probe.ErrNoConnectivity):
		return NoConnectivity
	case errors.Is(err, ErrTorNotInstalled):
		return TorNotInstalled
	case errors.Is(err, torrc.ErrConfigNotFound):
		return ConfigNotFound
	case errors.Is(err, torrc.ErrConfigRead):
		return ConfigReadFailed
	case errors.Is(err, torrc.ErrConfigWrite):
		return ConfigWriteFailed
	default:
		return Failure
	}
}
