package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/internal/history"
	"github.com/jfmyers9/stationfm/internal/nowplaying"
	"github.com/jfmyers9/stationfm/internal/playback"
	"github.com/jfmyers9/stationfm/internal/playlist"
	"github.com/jfmyers9/stationfm/internal/radio"
	"github.com/jfmyers9/stationfm/internal/station"
	"github.com/jfmyers9/stationfm/pkg/lastfm"
)

var playCmd = &cobra.Command{
	Use:   "play [station]",
	Short: "Play a Last.fm radio station",
	Long: `Tune into a station and play it until interrupted.

Without an argument the configured default station is played, or the
station played last.

While playing, these commands are read from stdin:
  n            skip to the next track
  p            pause or resume
  + / -        volume up / down
  i            show the current track
  s <station>  switch station ("s" alone cancels a delayed switch)
  q            quit

With radio.delay_change enabled, a station switch waits for the
current track to end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("delay-change", false, "Switch stations when the current track ends (overrides config)")
	playCmd.Flags().Bool("discovery", false, "Enable discovery mode (overrides config)")
	playCmd.Flags().String("decoder", "", "Decoder to use: exec or beep (overrides config)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logFile, logLevel)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPlayFlags(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle first signal gracefully, second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info().Msg("Shutdown signal received, stopping playback")
		cancel()

		select {
		case <-sigChan:
			logger.Warn().Msg("Second signal received, forcing exit")
			os.Exit(1)
		case <-ctx.Done():
		}
	}()

	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = hist.Close() }()

	initial, err := initialStation(ctx, cfg, hist, args)
	if err != nil {
		return err
	}

	client, err := newLastFMClient(cfg, logger)
	if err != nil {
		return err
	}

	dec, err := newDecoder(cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	supervisor := playback.NewSupervisor(playback.NewHTTPFetcher(nil), dec, logger)
	manager := playlist.NewManager(playlist.NewLastFMFetcher(client, lastfm.PlaylistOptions{
		Discovery: cfg.Radio.Discovery,
		Bitrate:   cfg.Radio.Bitrate,
	}), logger)

	controller := radio.NewController(radio.ControllerConfig{
		Service:     radio.NewLastFM(client),
		Expander:    station.NewResolver(client.Resource(), logger),
		Playlist:    manager,
		Player:      supervisor,
		History:     hist,
		Out:         out,
		DelayChange: cfg.Radio.DelayChange,
	}, logger)

	if err := controller.Tune(ctx, initial); err != nil {
		switch {
		case errors.Is(err, radio.ErrNotAuthenticated):
			return fmt.Errorf("no Last.fm session, run 'stationfm auth' first")
		case errors.Is(err, radio.ErrNoResponse):
			return fmt.Errorf("failed to reach Last.fm: %w", err)
		default:
			return err
		}
	}
	if title := manager.Title(); title != "" {
		_, _ = fmt.Fprintf(out, "Receiving %s.\n", title)
	}

	runner := radio.NewRunner(radio.RunnerConfig{
		Controller: controller,
		Playlist:   manager,
		Player:     supervisor,
		NowPlaying: nowplaying.NewStore(cfg.StatePath()),
		Out:        out,
	}, logger)

	commands := make(chan radio.Command)
	go readCommands(ctx, cmd.InOrStdin(), commands, out, logger)

	err = cfg.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring invalid configuration change")
			return
		}
		select {
		case commands <- radio.Command{Kind: radio.CommandDelayChange, Enabled: next.Radio.DelayChange}:
		case <-ctx.Done():
		}
	})
	if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
		logger.Warn().Err(err).Msg("Failed to watch configuration")
	}

	logger.Info().Str("station", controller.Current()).Msg("Starting playback")
	return runner.Run(ctx, commands)
}

func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("delay-change") {
		cfg.Radio.DelayChange, _ = cmd.Flags().GetBool("delay-change")
	}
	if cmd.Flags().Changed("discovery") {
		cfg.Radio.Discovery, _ = cmd.Flags().GetBool("discovery")
	}
	if d, _ := cmd.Flags().GetString("decoder"); d != "" {
		cfg.Player.Decoder = d
	}
}

// initialStation picks the station to tune at startup: the argument,
// then the configured default, then the last station played.
func initialStation(ctx context.Context, cfg *config.Config, hist *history.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Radio.DefaultStation != "" {
		return cfg.Radio.DefaultStation, nil
	}

	last, err := hist.Last(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read history: %w", err)
	}
	if last == "" {
		return "", fmt.Errorf("no station given and no station played before")
	}
	return last, nil
}

// readCommands parses stdin lines into commands. Input ending does not
// stop playback; only q or a signal does.
func readCommands(ctx context.Context, in io.Reader, commands chan<- radio.Command, out io.Writer, logger zerolog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, err := radio.ParseCommand(scanner.Text())
		if err != nil {
			if scanner.Text() != "" {
				_, _ = fmt.Fprintln(out, "Unknown command.")
			}
			continue
		}

		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug().Err(err).Msg("Stopped reading commands")
	}
}
