package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/internal/station"
)

var expandCmd = &cobra.Command{
	Use:   "expand <station>",
	Short: "Show how a station identifier is sent to Last.fm",
	Long: `Normalize a station identifier and resolve the artist names of a
multi-artist station (lastfm://artists/a*b*c) to their Last.fm ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := setupLogger(logFile, logLevel)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	canonical := station.Normalize(args[0])
	if canonical == "" {
		return fmt.Errorf("empty station")
	}

	client, err := newLastFMClient(cfg, logger)
	if err != nil {
		return err
	}

	expanded := station.NewResolver(client.Resource(), logger).Expand(ctx, canonical)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "station:  %s\n", canonical)
	_, _ = fmt.Fprintf(out, "expanded: %s\n", expanded)
	return nil
}
