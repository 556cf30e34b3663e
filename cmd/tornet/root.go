package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/safe-acid/tornet/internal/exitcode"
)

// NewRootCmd creates the root command for tornet.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tornet",
		Short: "Automate IP address changes using Tor",
		Long: `tornet automates public-IP rotation through the system Tor service.

It reloads Tor on a fixed or randomized schedule so each cycle gets a
new circuit (and usually a new exit IP), and can constrain which
country the exit relay is in by editing torrc before the loop starts.

tornet needs a Tor daemon managed by systemd or SysV init, and root
privileges (or sudo) for service control and torrc editing.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRotateCmd())
	cmd.AddCommand(NewIPCmd())
	cmd.AddCommand(NewStopCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and terminates the process with the
// stable exit code for whatever failed. The codes are a scripting
// contract; see the exitcode package.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.FromError(err))
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
