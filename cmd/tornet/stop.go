package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safe-acid/tornet/internal/config"
	"github.com/safe-acid/tornet/internal/lifecycle"
	applog "github.com/safe-acid/tornet/internal/log"
	"github.com/safe-acid/tornet/internal/service"
)

// NewStopCmd creates the stop command.
func NewStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the Tor service and stray tornet processes",
		Long: `Stop halts the managed Tor service and terminates any tornet
processes left over from earlier runs. Failures on either step are
logged but do not abort the other.`,
		Args: cobra.NoArgs,
		RunE: runStopCmd,
	}
	cmd.Flags().String("service", config.DefaultService, "Name of the managed Tor service")
	return cmd
}

// runStopCmd executes the stop command.
func runStopCmd(cmd *cobra.Command, _ []string) error {
	name, err := cmd.Flags().GetString("service")
	if err != nil {
		return err
	}
	logger := applog.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	controller, err := service.New(name, service.WithLogger(logger))
	if err != nil {
		return err
	}

	lifecycle.NewManager(controller, config.AppName, lifecycle.WithLogger(logger)).
		Shutdown(cmd.Context())

	fmt.Fprintln(cmd.OutOrStdout(), "Tor services and tornet processes stopped.")
	return nil
}
