package config

import (
	"time"

	"github.com/safe-acid/tornet/internal/probe"
)

// Default configuration values. The waits mirror how long a freshly
// (re)started Tor daemon typically needs before it can route traffic.
const (
	// DefaultService is the managed service name.
	DefaultService = "tor"

	// DefaultInterval is the rotation interval when the user gives none.
	DefaultInterval = "60"

	// DefaultCount is the default number of rotations. Zero means
	// rotate until interrupted.
	DefaultCount = 10

	// DefaultFallbackExits is the ordered fallback country list used
	// when the preferred exit country cannot establish a circuit.
	// Use "any" to allow any exit country.
	DefaultFallbackExits = "de,nl,fr,pl,se,fi,lt,lv,ee"

	// InitialBootstrapWait is how long to wait after starting the
	// service before entering the rotation loop. A cold Tor start needs
	// a moment to build its first circuit; we wait unconditionally
	// rather than polling readiness.
	InitialBootstrapWait = 5 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "tornet"
)

// Config holds all options for one tornet invocation.
//
// Design decision: one flat struct populated from flags and the config
// file, passed through by dependency injection. The option count is
// small; nesting would add noise without benefit.
type Config struct {
	// Service is the managed service name (normally "tor"). It is also
	// the process name matched in the process table.
	Service string

	// ProxyAddress is the Tor SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Interval is the raw rotation interval string: seconds ("60") or
	// an inclusive range ("30-120"). Parsed and validated once at
	// startup by the rotate package.
	Interval string

	// Count is the number of rotations to perform; 0 means indefinite.
	Count int

	// PreferCountry is the exit country to try strictly before falling
	// back. Empty disables the policy-application step entirely.
	PreferCountry string

	// FallbackExits is a comma-separated fallback country list, or
	// "any" to allow any exit country after the preferred one fails.
	FallbackExits string

	// TorrcPath overrides torrc auto-detection when non-empty.
	TorrcPath string

	// HistoryDir is where the rotation history database lives.
	HistoryDir string

	// NoHistory disables rotation history recording.
	NoHistory bool

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config with defaults filled in.
// Defaults live in a constructor rather than zero values because most
// of them are non-zero, and this documents them in one place.
func NewConfig() *Config {
	return &Config{
		Service:       DefaultService,
		ProxyAddress:  probe.DefaultProxyAddress,
		Interval:      DefaultInterval,
		Count:         DefaultCount,
		FallbackExits: DefaultFallbackExits,
	}
}

// Validate checks the configuration, returning the first problem found.
// Interval strings are validated separately by rotate.ParseInterval so
// the malformed-interval condition keeps its dedicated exit code.
func (c *Config) Validate() error {
	if c.Service == "" {
		return ErrEmptyService
	}
	if c.Count < 0 {
		return ErrInvalidCount
	}
	if c.ProxyAddress == "" {
		return ErrEmptyProxyAddress
	}
	return nil
}

// FallbackCountries parses FallbackExits into a country list.
// It returns nil for "any" or an empty value, which the policy applier
// treats as "no constraint".
func (c *Config) FallbackCountries() []string {
	return ParseCountryList(c.FallbackExits)
}
