package rotate

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/safe-acid/tornet/internal/probe"
	"github.com/safe-acid/tornet/internal/service"
)

// DefaultCircuitWait is the pause between reloading the service and
// probing for the new IP. Reload only asks Tor to pick a new circuit;
// the circuit needs a moment to exist before the probe can use it.
const DefaultCircuitWait = 2 * time.Second

// Reloader is the slice of the service controller the scheduler needs.
type Reloader interface {
	Action(ctx context.Context, action service.Action) (service.Outcome, error)
}

// IPSource is the slice of the connectivity probe the scheduler needs.
type IPSource interface {
	CurrentIP(ctx context.Context) (probe.Result, error)
}

// Recorder persists one rotation observation. Recording is best
// effort: a recorder failure is logged and the loop continues.
type Recorder interface {
	RecordRotation(ctx context.Context, ip string, viaProxy bool) error
}

// Scheduler drives the rotation loop.
//
// There is no internal parallelism: every iteration is sleep → reload →
// circuit wait → probe, run on the caller's goroutine. Cancellation is
// observed during both sleeps and between steps, so an interrupt during
// the sleep phase stops the loop before that iteration's reload happens.
type Scheduler struct {
	interval    Interval
	count       int
	controller  Reloader
	prober      IPSource
	recorder    Recorder
	report      func(ip string)
	circuitWait time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	rng         *rand.Rand
	logger      *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRecorder attaches a rotation history recorder.
func WithRecorder(r Recorder) SchedulerOption {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithReportFunc sets the callback invoked with each newly observed IP.
// This is where the CLI prints "Your IP address is ...".
func WithReportFunc(report func(ip string)) SchedulerOption {
	return func(s *Scheduler) {
		s.report = report
	}
}

// WithCircuitWait overrides the post-reload pause.
func WithCircuitWait(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.circuitWait = d
	}
}

// WithRand sets the random source used for interval sampling.
// Defaults to a time-seeded source.
func WithRand(rng *rand.Rand) SchedulerOption {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

// WithSchedulerLogger sets a custom logger. Defaults to slog.Default().
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler. count is the number of rotations to
// perform; zero means rotate until the context is cancelled.
func NewScheduler(interval Interval, count int, controller Reloader, prober IPSource, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		interval:    interval,
		count:       count,
		controller:  controller,
		prober:      prober,
		circuitWait: DefaultCircuitWait,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // jitter, not cryptography
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run executes the rotation loop until the count is exhausted or the
// context is cancelled. The returned error is the context's error on
// interruption and nil on normal completion; a probe that yields no IP
// is a warning for that cycle, never a loop exit.
func (s *Scheduler) Run(ctx context.Context) error {
	for i := 0; s.count == 0 || i < s.count; i++ {
		wait := s.interval.Next(s.rng)
		s.logger.Debug("waiting before next rotation",
			"wait", wait.String(),
			"iteration", i+1,
		)
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
		if err := s.rotateOnce(ctx); err != nil {
			return err
		}
	}
	return nil
}

// rotateOnce performs one rotation: reload the service, give the new
// circuit a moment, then observe the public IP.
func (s *Scheduler) rotateOnce(ctx context.Context) error {
	if _, err := s.controller.Action(ctx, service.ActionReload); err != nil {
		return err
	}
	if err := s.sleep(ctx, s.circuitWait); err != nil {
		return err
	}

	res, err := s.prober.CurrentIP(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// No new IP this cycle; rotation itself keeps going.
		s.logger.Warn("could not fetch IP after reload", "error", err)
		return nil
	}

	if s.report != nil {
		s.report(res.IP)
	}
	if s.recorder != nil {
		if err := s.recorder.RecordRotation(ctx, res.IP, res.ViaProxy); err != nil {
			s.logger.Warn("failed to record rotation", "error", err)
		}
	}
	return nil
}

// sleepContext sleeps for d or until the context is cancelled.
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
