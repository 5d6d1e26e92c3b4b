package radio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/playback"
	"github.com/jfmyers9/stationfm/internal/playlist"
)

const (
	defaultMaxFailures     = 5
	defaultShutdownTimeout = 5 * time.Second
)

// Supervisor is the playback supervisor driven by the Runner.
type Supervisor interface {
	Player
	Play(pl *playlist.Playlist) (playback.Result, error)
	Control(cmd playback.Command) error
	Events() <-chan playback.Event
	NowPlaying() (playback.NowPlaying, bool)
	Stop(ctx context.Context) error
}

// NowPlayingStore persists the track being played.
type NowPlayingStore interface {
	Set(track playback.NowPlaying, stationURL string) error
	TogglePause() error
	Clear() error
}

// RunnerConfig holds the collaborators of a Runner. NowPlaying may be
// nil.
type RunnerConfig struct {
	Controller  *Controller
	Playlist    *playlist.Manager
	Player      Supervisor
	NowPlaying  NowPlayingStore
	Out         io.Writer
	MaxFailures int // Consecutive failed tracks before playback stops
}

// Runner is the single control loop of the player. It serializes user
// commands and playback events so that the Controller and the playlist
// are only touched from one goroutine.
type Runner struct {
	controller *Controller
	playlist   *playlist.Manager
	player     Supervisor
	nowPlaying NowPlayingStore
	out        io.Writer
	logger     zerolog.Logger

	maxFailures     int
	shutdownTimeout time.Duration

	playing    bool   // A process was started and its exit not handled yet
	generation uint64 // Playlist generation the process was started from
	failed     bool   // The running process reported a failure
	failures   int
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig, logger zerolog.Logger) *Runner {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	return &Runner{
		controller:      cfg.Controller,
		playlist:        cfg.Playlist,
		player:          cfg.Player,
		nowPlaying:      cfg.NowPlaying,
		out:             out,
		logger:          logger.With().Str("component", "runner").Logger(),
		maxFailures:     maxFailures,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// Run plays the tuned station and handles commands until ctx is done,
// commands is closed or a quit command arrives. Playback is stopped
// before Run returns.
func (r *Runner) Run(ctx context.Context, commands <-chan Command) error {
	r.startNext(ctx)

	for {
		select {
		case <-ctx.Done():
			return r.shutdown()

		case ev := <-r.player.Events():
			r.handleEvent(ctx, ev)

		case cmd, ok := <-commands:
			if !ok || cmd.Kind == CommandQuit {
				return r.shutdown()
			}
			r.handleCommand(ctx, cmd)
		}
	}
}

func (r *Runner) shutdown() error {
	r.logger.Debug().Msg("Stopping playback")

	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()

	err := r.player.Stop(ctx)
	r.playing = false
	r.clearNowPlaying()
	return err
}

func (r *Runner) handleEvent(ctx context.Context, ev playback.Event) {
	switch ev.Type {
	case playback.EventFailed:
		r.failed = true
		r.logger.Warn().Err(ev.Err).Str("process", ev.ProcessID.String()).Msg("Track failed")
		_, _ = fmt.Fprintln(r.out, "Couldn't play track.")

	case playback.EventExited:
		r.onExit(ctx)
	}
}

// onExit advances to the next track once the playback process ended.
func (r *Runner) onExit(ctx context.Context) {
	r.playing = false

	if r.failed {
		r.failures++
	} else {
		r.failures = 0
	}
	r.failed = false

	// A tune replaces the playlist; its head has not been played yet
	if r.generation == r.playlist.Generation() {
		r.playlist.Advance()
	}

	if applied, err := r.controller.ApplyPending(ctx); applied {
		if err != nil {
			r.logger.Debug().Err(err).Msg("Delayed station change failed")
		} else {
			r.announceStation()
		}
	}

	if r.failures >= r.maxFailures {
		r.logger.Error().Int("failures", r.failures).Msg("Too many failed tracks, stopping playback")
		_, _ = fmt.Fprintln(r.out, "Too many failed tracks, stopped.")
		r.failures = 0
		r.clearNowPlaying()
		return
	}

	r.startNext(ctx)
}

// startNext plays the head of the playlist, refilling it first when it
// ran empty.
func (r *Runner) startNext(ctx context.Context) {
	if r.playing {
		return
	}

	if r.playlist.Left() == 0 {
		if r.controller.Current() == "" {
			r.clearNowPlaying()
			return
		}
		if err := r.playlist.Expand(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to refill playlist")
			_, _ = fmt.Fprintln(r.out, "Couldn't fetch playlist.")
			r.clearNowPlaying()
			return
		}
	}

	result, err := r.player.Play(r.playlist.Playlist())
	switch result {
	case playback.Started:
		r.playing = true
		r.generation = r.playlist.Generation()
		r.announceTrack()
	case playback.Skipped:
		// Its exit event restarts playback
		r.playing = true
	case playback.Failed:
		r.logger.Debug().Err(err).Msg("Nothing to play")
		r.clearNowPlaying()
	}
}

func (r *Runner) handleCommand(ctx context.Context, cmd Command) {
	r.logger.Debug().Str("command", cmd.Kind.String()).Msg("Handling command")

	switch cmd.Kind {
	case CommandSkip:
		if !r.player.Skip() {
			r.startNext(ctx)
		}

	case CommandPause:
		if err := r.player.Control(playback.CommandPause); err != nil {
			r.logger.Debug().Err(err).Msg("Pause ignored")
			return
		}
		if r.nowPlaying != nil {
			if err := r.nowPlaying.TogglePause(); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to persist pause state")
			}
		}

	case CommandVolumeUp, CommandVolumeDown:
		c := playback.CommandVolumeUp
		if cmd.Kind == CommandVolumeDown {
			c = playback.CommandVolumeDown
		}
		if err := r.player.Control(c); err != nil {
			r.logger.Debug().Err(err).Msg("Volume change ignored")
		}

	case CommandInfo:
		np, ok := r.player.NowPlaying()
		if !ok {
			_, _ = fmt.Fprintln(r.out, "Nothing playing.")
			return
		}
		_, _ = fmt.Fprintf(r.out, "%s - %s (%s)\n", np.Creator, np.Title, np.Station)

	case CommandTune:
		before := r.controller.Current()
		if err := r.controller.Tune(ctx, cmd.Station); err != nil {
			r.logger.Debug().Err(err).Str("station", cmd.Station).Msg("Tune failed")
			return
		}
		if r.controller.Current() != before {
			r.announceStation()
		}
		r.startNext(ctx)

	case CommandDelayChange:
		r.controller.SetDelayChange(cmd.Enabled)
		r.logger.Info().Bool("enabled", cmd.Enabled).Msg("Delayed station change setting updated")
	}
}

func (r *Runner) announceStation() {
	if title := r.playlist.Title(); title != "" {
		_, _ = fmt.Fprintf(r.out, "Receiving %s.\n", title)
	}
}

func (r *Runner) announceTrack() {
	np, ok := r.player.NowPlaying()
	if !ok {
		return
	}

	_, _ = fmt.Fprintf(r.out, "Now playing \"%s\" by %s.\n", np.Title, np.Creator)

	if r.nowPlaying != nil {
		if err := r.nowPlaying.Set(np, r.controller.Current()); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to persist now playing")
		}
	}
}

func (r *Runner) clearNowPlaying() {
	if r.nowPlaying == nil {
		return
	}
	if err := r.nowPlaying.Clear(); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to clear now playing")
	}
}
