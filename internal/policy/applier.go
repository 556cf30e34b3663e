package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/safe-acid/tornet/internal/service"
	"github.com/safe-acid/tornet/internal/torrc"
)

// DefaultBootstrapWait is the grace period between restarting Tor and
// probing through it. Restart is asynchronous and Tor needs time to
// negotiate a circuit; we deliberately wait a fixed period instead of
// polling readiness, trading a little latency for a lot of simplicity.
const DefaultBootstrapWait = 6 * time.Second

// Status is the terminal state of one policy application run.
type Status int

const (
	// StatusPreferred means the preferred strict policy verified: Tor
	// established a circuit with the preference in force.
	StatusPreferred Status = iota

	// StatusFallback means the preferred policy failed verification but
	// the non-strict fallback policy verified.
	StatusFallback

	// StatusDegraded means both verifications failed. The fallback
	// policy is still on disk; Tor may come up later on its own.
	StatusDegraded
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusPreferred:
		return "preferred"
	case StatusFallback:
		return "fallback"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Result reports how a policy application run ended.
type Result struct {
	// Status is the terminal state.
	Status Status

	// IP is the Tor exit IP observed during verification, empty when
	// the run ended degraded.
	IP string

	// Applied is the policy left on disk when the run ended.
	Applied torrc.ExitPolicy
}

// Restarter is the slice of the service controller the applier needs.
type Restarter interface {
	Action(ctx context.Context, action service.Action) (service.Outcome, error)
}

// Verifier is the slice of the connectivity probe the applier needs:
// the proxied lookup that proves Tor is routing traffic.
type Verifier interface {
	ProxyIP(ctx context.Context) (string, error)
}

// EditFunc writes an exit policy to the torrc at path.
// Production use is torrc.WritePolicy; tests substitute a recorder.
type EditFunc func(path string, policy torrc.ExitPolicy) error

// Applier orchestrates policy application against one torrc and one
// service.
type Applier struct {
	torrcPath     string
	controller    Restarter
	prober        Verifier
	edit          EditFunc
	bootstrapWait time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
	logger        *slog.Logger
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithEditFunc substitutes the torrc editor.
func WithEditFunc(edit EditFunc) ApplierOption {
	return func(a *Applier) {
		a.edit = edit
	}
}

// WithBootstrapWait overrides the post-restart grace period.
func WithBootstrapWait(d time.Duration) ApplierOption {
	return func(a *Applier) {
		a.bootstrapWait = d
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates an Applier for the torrc at torrcPath.
func NewApplier(torrcPath string, controller Restarter, prober Verifier, opts ...ApplierOption) *Applier {
	a := &Applier{
		torrcPath:     torrcPath,
		controller:    controller,
		prober:        prober,
		edit:          torrc.WritePolicy,
		bootstrapWait: DefaultBootstrapWait,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Apply runs the policy state machine: preferred policy → restart →
// wait → verify, then on verification failure one fallback attempt with
// the same restart/wait/verify sequence.
//
// fallback lists the non-strict fallback countries in preference order;
// nil or empty means "any exit". The fallback is applied unconditionally
// once the preferred policy fails verification — the second probe only
// decides whether the result is StatusFallback or StatusDegraded, and a
// degraded outcome is not an error.
//
// Errors are reserved for conditions that make the run meaningless:
// torrc edit failures, a controller that cannot act at all, and context
// cancellation during a wait or a verification probe.
func (a *Applier) Apply(ctx context.Context, preferred torrc.ExitPolicy, fallback []string) (Result, error) {
	a.logger.Info("applying preferred exit policy", "policy", preferred.String())
	if err := a.applyAndRestart(ctx, preferred); err != nil {
		return Result{}, err
	}

	if ip, err := a.prober.ProxyIP(ctx); err == nil {
		a.logger.Info("preferred exit policy verified", "ip", ip)
		return Result{Status: StatusPreferred, IP: ip, Applied: preferred}, nil
	}
	// A probe that failed because the caller was interrupted must not
	// be mistaken for "no circuit": bail out before touching the torrc
	// or restarting the service again.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	fb := fallbackPolicy(fallback)
	a.logger.Warn("preferred exits unavailable, falling back", "policy", fb.String())
	if err := a.applyAndRestart(ctx, fb); err != nil {
		return Result{}, err
	}

	if ip, err := a.prober.ProxyIP(ctx); err == nil {
		a.logger.Info("fallback exit policy verified", "ip", ip)
		return Result{Status: StatusFallback, IP: ip, Applied: fb}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	a.logger.Warn("fallback also failed to establish Tor connectivity (Tor may be blocked)")
	return Result{Status: StatusDegraded, Applied: fb}, nil
}

// applyAndRestart writes one policy, restarts the service, and waits
// out the bootstrap grace period.
func (a *Applier) applyAndRestart(ctx context.Context, p torrc.ExitPolicy) error {
	if err := a.edit(a.torrcPath, p); err != nil {
		return err
	}
	if _, err := a.controller.Action(ctx, service.ActionRestart); err != nil {
		return err
	}
	return a.sleep(ctx, a.bootstrapWait)
}

// fallbackPolicy turns the fallback country list into a policy:
// empty means any exit, otherwise a non-strict preference preserving
// the caller's order. Non-strict because a strict constraint over an
// unreachable relay set would permanently block circuit construction;
// relaxing strictness lets Tor pick any working path.
func fallbackPolicy(countries []string) torrc.ExitPolicy {
	if len(countries) == 0 {
		return torrc.AnyExit()
	}
	return torrc.NewExitPolicy(countries, false)
}

// sleepContext sleeps for d or until the context is cancelled,
// whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
