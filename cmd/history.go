package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played stations",
	Long: `List the stations tuned by 'stationfm play', most recent first.

Any listed station can be passed to 'stationfm play'.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 10, "Number of stations to list (0=all)")
	historyCmd.Flags().Duration("prune", 0, "Forget stations not played within this duration")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		removed, err := store.Cleanup(ctx, prune)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	printHistory(cmd.OutOrStdout(), entries, time.Now())
	return nil
}

func printHistory(out io.Writer, entries []history.Entry, now time.Time) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No stations played yet.")
		return
	}

	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%-40s %3d× %s ago\n",
			e.Station, e.Plays, now.Sub(e.LastPlayed).Truncate(time.Minute))
	}
}
