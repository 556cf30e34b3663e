package config

import "errors"

// Validation errors.
//
// Package-level sentinels rather than ad-hoc errors.New calls inside
// Validate, so callers can classify with errors.Is while the messages
// stay user-readable.
var (
	// ErrEmptyService is returned when no service name is configured.
	ErrEmptyService = errors.New("service name must not be empty")

	// ErrInvalidCount is returned for a negative rotation count.
	// Zero is valid and means "rotate indefinitely".
	ErrInvalidCount = errors.New("rotation count must be zero or positive")

	// ErrEmptyProxyAddress is returned when the SOCKS proxy address is
	// missing entirely; format errors are caught by the probe.
	ErrEmptyProxyAddress = errors.New("proxy address must not be empty")

	// ErrFileNotFound is returned by LoadFile when the configuration
	// file does not exist. Callers decide whether that is fatal based
	// on whether the path was explicitly given.
	ErrFileNotFound = errors.New("configuration file not found")
)
