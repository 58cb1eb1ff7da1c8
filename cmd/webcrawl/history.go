package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs",
		Long: `History lists the crawl runs recorded in the local database,
newest first, with their statistics and storage locations.

Examples:
  # List all recorded runs
  webcrawl history

  # List runs for a single seed
  webcrawl history --seed https://example.com

  # Emit the list as JSON
  webcrawl history --json`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("seed", "s", "", "Only show runs for this seed URL")
	cmd.Flags().BoolP("json", "j", false, "Output the run list as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	seed, err := cmd.Flags().GetString("seed")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Opening read-only: a missing database just means no runs yet.
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history found.")
		return nil //nolint:nilerr // Absence of history is not an error
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSEED\tPAGES\tTEXTS\tIMAGES\tERRORS\tELAPSED\tSTORAGE")
	for _, run := range runs {
		started := run.StartedAt.Format("2006-01-02 15:04")
		seedURL := run.SeedURL
		if run.Interrupted {
			seedURL += " (interrupted)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			started,
			seedURL,
			run.Stats.PagesCrawled,
			run.Stats.TextsSaved,
			run.Stats.ImagesDownloaded,
			run.Stats.Errors,
			run.Elapsed.Round(time.Millisecond),
			run.StorageDir,
		)
	}
	return w.Flush()
}
