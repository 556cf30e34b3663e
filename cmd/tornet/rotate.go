package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/safe-acid/tornet/internal/config"
	"github.com/safe-acid/tornet/internal/exitcode"
	"github.com/safe-acid/tornet/internal/history"
	"github.com/safe-acid/tornet/internal/lifecycle"
	applog "github.com/safe-acid/tornet/internal/log"
	"github.com/safe-acid/tornet/internal/policy"
	"github.com/safe-acid/tornet/internal/probe"
	"github.com/safe-acid/tornet/internal/rotate"
	"github.com/safe-acid/tornet/internal/service"
	"github.com/safe-acid/tornet/internal/torrc"
)

// NewRotateCmd creates the rotate command.
func NewRotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Periodically rotate the public IP through Tor",
		Long: `Rotate reloads the Tor service on a schedule so each cycle requests a
new circuit, then reports the resulting public IP.

With --prefer, tornet first edits torrc to demand exit relays in the
given country (strictly), restarts Tor, and verifies the policy took
effect by probing through the SOCKS proxy. If Tor cannot establish a
circuit under the strict policy, a non-strict fallback list is applied
instead; a failed fallback is reported but does not stop the tool.

Examples:
  # Rotate every 60 seconds, 10 times
  tornet rotate

  # Rotate on a randomized 30-120 second cadence, forever
  tornet rotate --interval 30-120 --count 0

  # Prefer Russian exits, fall back to any exit country
  tornet rotate --prefer ru --fallback any

  # Prefer Russian exits, fall back softly to Germany then Netherlands
  tornet rotate --prefer ru --fallback de,nl

Configuration file (tornet.yaml) example:
  interval: 30-120
  count: 0
  prefer: ru
  fallback: de,nl,fr`,
		Args: cobra.NoArgs,
		RunE: runRotateCmd,
	}

	// Rotation schedule flags
	cmd.Flags().StringP("interval", "i", config.DefaultInterval,
		`Seconds between IP changes, or an inclusive range like "30-120"`)
	cmd.Flags().IntP("count", "n", config.DefaultCount,
		"Number of IP changes; 0 rotates indefinitely")

	// Exit policy flags
	cmd.Flags().StringP("prefer", "p", "",
		"Exit country code to try strictly first (e.g. ru); empty skips torrc editing")
	cmd.Flags().String("fallback", config.DefaultFallbackExits,
		`Comma-separated fallback country codes, or "any" for no constraint`)
	cmd.Flags().String("torrc", "",
		"Path to torrc (default: auto-detect common locations)")

	// Service and proxy flags
	cmd.Flags().String("service", config.DefaultService,
		"Name of the managed Tor service")
	cmd.Flags().String("proxy", probe.DefaultProxyAddress,
		"Tor SOCKS5 proxy address")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: XDG config dir, then ~/.tornet.yaml)")

	// History
	cmd.Flags().Bool("no-history", false,
		"Disable rotation history recording")

	return cmd
}

// runRotateCmd executes the rotate command.
func runRotateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Malformed intervals are rejected here, once, never per iteration.
	interval, err := rotate.ParseInterval(cfg.Interval)
	if err != nil {
		return err
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// The process name stays "tor" regardless of the service name:
	// a unit like tor@default still runs a process whose comm is tor.
	prober, err := probe.NewProber(
		probe.WithProxyAddress(cfg.ProxyAddress),
		probe.WithProberLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := lifecycle.Context(cmd.Context())
	defer stop()

	if err := prober.CheckConnectivity(ctx); err != nil {
		return err
	}
	if _, err := exec.LookPath("tor"); err != nil {
		return exitcode.ErrTorNotInstalled
	}

	controller, err := service.New(cfg.Service, service.WithLogger(logger))
	if err != nil {
		return err
	}
	shutdown := lifecycle.NewManager(controller, config.AppName, lifecycle.WithLogger(logger))

	var store *history.Store
	if !cfg.NoHistory {
		dir := cfg.HistoryDir
		if dir == "" {
			dir = history.DefaultDir()
		}
		store, err = history.Open(dir)
		if err != nil {
			// History is a convenience; rotation works without it.
			logger.Warn("rotation history disabled", "error", err)
			store = nil
		} else {
			defer store.Close() //nolint:errcheck // best-effort close on exit
		}
	}

	if cfg.PreferCountry != "" {
		if err := applyExitPolicy(ctx, cfg, controller, prober, store, logger); err != nil {
			if ctx.Err() != nil {
				return finishInterrupted(cmd, shutdown)
			}
			return err
		}
	}

	// Bring the service up for the rotation loop. A non-zero exit is
	// already logged by the controller; the loop's reloads will surface
	// any persistent problem.
	if _, err := controller.Action(ctx, service.ActionStart); err != nil {
		return err
	}
	logger.Info("tor service started, waiting for Tor to establish a connection")
	logger.Info("configure your browser to use the Tor SOCKS proxy", "proxy", cfg.ProxyAddress)
	if err := sleepContext(ctx, config.InitialBootstrapWait); err != nil {
		return finishInterrupted(cmd, shutdown)
	}

	opts := []rotate.SchedulerOption{
		rotate.WithSchedulerLogger(logger),
		rotate.WithReportFunc(func(ip string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Your IP address is: %s\n", ip)
		}),
	}
	if store != nil {
		opts = append(opts, rotate.WithRecorder(store))
	}
	scheduler := rotate.NewScheduler(interval, cfg.Count, controller, prober, opts...)

	if err := scheduler.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return finishInterrupted(cmd, shutdown)
		}
		return err
	}
	return nil
}

// applyExitPolicy runs the policy state machine before the loop starts.
func applyExitPolicy(
	ctx context.Context,
	cfg *config.Config,
	controller *service.Controller,
	prober *probe.Prober,
	store *history.Store,
	logger *slog.Logger,
) error {
	torrcPath, err := torrc.Locate(cfg.TorrcPath)
	if err != nil {
		return err
	}
	logger.Info("using torrc", "path", torrcPath)

	applier := policy.NewApplier(torrcPath, controller, prober, policy.WithLogger(logger))
	preferred := torrc.NewExitPolicy([]string{cfg.PreferCountry}, true)

	res, err := applier.Apply(ctx, preferred, cfg.FallbackCountries())
	if err != nil {
		return err
	}
	logger.Info("exit policy applied",
		"status", res.Status.String(),
		"policy", res.Applied.String(),
	)
	if store != nil {
		if err := store.RecordPolicy(ctx, res.Applied, res.Status.String()); err != nil {
			logger.Warn("failed to record policy application", "error", err)
		}
	}
	return nil
}

// finishInterrupted performs the interrupt cleanup path: stop the
// service and stray processes, notify the user, exit successfully.
// The fresh background context matters — the signal context is already
// cancelled and would abort the cleanup commands themselves.
func finishInterrupted(cmd *cobra.Command, shutdown *lifecycle.Manager) error {
	shutdown.Shutdown(context.Background())
	fmt.Fprintln(cmd.ErrOrStderr(), "Program terminated by user.")
	return nil
}

// buildConfig assembles the configuration: defaults, then the config
// file, then explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path := config.FindFile(explicit); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		f.Apply(cfg)
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrFileNotFound, explicit)
	}

	// Flags the user actually set override the file.
	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.Interval, _ = flags.GetString("interval")
	}
	if flags.Changed("count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("prefer") {
		cfg.PreferCountry, _ = flags.GetString("prefer")
	}
	if flags.Changed("fallback") {
		cfg.FallbackExits, _ = flags.GetString("fallback")
	}
	if flags.Changed("torrc") {
		cfg.TorrcPath, _ = flags.GetString("torrc")
	}
	if flags.Changed("service") {
		cfg.Service, _ = flags.GetString("service")
	}
	if flags.Changed("proxy") {
		cfg.ProxyAddress, _ = flags.GetString("proxy")
	}
	if flags.Changed("no-history") {
		cfg.NoHistory, _ = flags.GetBool("no-history")
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
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
