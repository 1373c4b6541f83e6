package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portalscan/portalscan/internal/config"
	"github.com/portalscan/portalscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past mapping runs and correlate findings across them",
		Long: `History lists past mapping runs recorded in the local database, newest
first. With --value it instead shows every run a specific payment
identifier was ever extracted in, which links otherwise unrelated portals
that share a deposit address or bank account.

Examples:
  # All recorded runs
  portalscan history

  # Runs against one portal
  portalscan history --url https://pay.example.com/

  # Everywhere this address was ever seen
  portalscan history --value 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().StringP("url", "u", "", "Only show runs for this start URL")
	cmd.Flags().String("value", "", "Show every finding of this exact value across all runs")

	return cmd
}

// runHistory executes the history command.
func runHistory(cmd *cobra.Command, _ []string) error {
	startURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	value, err := cmd.Flags().GetString("value")
	if err != nil {
		return err
	}

	// Listing must not create an empty database on a machine that never ran
	// a map.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no run history yet: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only usage

	if value != "" {
		return printValueHistory(cmd, db, value)
	}
	return printRunHistory(cmd, db, startURL)
}

// printRunHistory lists recorded runs, newest first.
func printRunHistory(cmd *cobra.Command, db *database.HistoryDB, startURL string) error {
	runs, err := db.ListRuns(cmd.Context(), startURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	fmt.Fprintf(out, "%-22s %-19s %-10s %8s %8s  %s\n",
		"RUN ID", "DATE", "STATUS", "PAGES", "FAILED", "START URL")
	fmt.Fprintln(out, strings.Repeat("-", 100))

	for _, run := range runs {
		date := run.Timestamp.Format("2006-01-02 15:04:05")
		if run.Timestamp.IsZero() {
			date = "unknown"
		}
		fmt.Fprintf(out, "%-22s %-19s %-10s %8d %8d  %s\n",
			run.RunID, date, run.Status, run.PagesVisited, run.PagesFailed, run.StartURL)
	}
	fmt.Fprintf(out, "\n%d run(s)\n", len(runs))
	return nil
}

// printValueHistory shows every occurrence of one extracted value.
func printValueHistory(cmd *cobra.Command, db *database.HistoryDB, value string) error {
	findings, err := db.FindValue(cmd.Context(), value)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintf(out, "Value %q was never extracted.\n", value)
		return nil
	}

	fmt.Fprintf(out, "Value %q seen %d time(s):\n\n", value, len(findings))
	for _, f := range findings {
		fmt.Fprintf(out, "  [%s] %s\n", f.Detector, f.SourceURL)
		if f.Context != "" {
			fmt.Fprintf(out, "      %s\n", f.Context)
		}
	}
	return nil
}
