package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safe-acid/tornet/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded IP rotations",
		Long: `History lists the public IPs observed by past rotate runs,
newest first. With --markdown the list is rendered as a Markdown
table suitable for pasting into a report.`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of rotations to show; 0 shows all")
	cmd.Flags().Bool("markdown", false, "Render as a Markdown table")
	cmd.Flags().String("dir", "", "History directory (default: XDG data dir)")
	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = history.DefaultDir()
	}

	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // read-only usage

	rotations, err := store.Rotations(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(rotations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rotations recorded yet.")
		return nil
	}

	if asMarkdown {
		return history.WriteMarkdown(cmd.OutOrStdout(), rotations)
	}
	for _, r := range rotations {
		transport := "direct"
		if r.ViaProxy {
			transport = "tor"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-15s  %s\n",
			r.RotatedAt.Format("2006-01-02 15:04:05"), r.IP, transport)
	}
	return nil
}
