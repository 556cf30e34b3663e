package main

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "github.com/safe-acid/tornet/internal/log"
	"github.com/safe-acid/tornet/internal/probe"
)

// NewIPCmd creates the ip command.
func NewIPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ip",
		Short: "Print the current public IP address",
		Long: `Ip prints the public IP address as seen from the outside.

When the Tor process is running, the lookup goes through the SOCKS
proxy and reports the exit relay's address; otherwise it goes direct.`,
		Args: cobra.NoArgs,
		RunE: runIPCmd,
	}
	cmd.Flags().String("proxy", probe.DefaultProxyAddress, "Tor SOCKS5 proxy address")
	return cmd
}

// runIPCmd executes the ip command.
func runIPCmd(cmd *cobra.Command, _ []string) error {
	proxy, err := cmd.Flags().GetString("proxy")
	if err != nil {
		return err
	}
	logger := applog.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	prober, err := probe.NewProber(
		probe.WithProxyAddress(proxy),
		probe.WithProberLogger(logger),
	)
	if err != nil {
		return err
	}

	res, err := prober.CurrentIP(cmd.Context())
	if err != nil {
		// A transient lookup failure is worth a warning, not a crash:
		// the next attempt usually succeeds once a circuit settles.
		logger.Warn("having trouble fetching the IP address, please wait", "error", err)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Your IP address is: %s\n", res.IP)
	return nil
}
