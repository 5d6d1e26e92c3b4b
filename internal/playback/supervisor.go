package playback

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/playlist"
)

const eventBuffer = 16

// process is the handle of one running playback task.
type process struct {
	id          uuid.UUID
	cancel      context.CancelFunc
	done        chan struct{}
	interrupted bool
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Supervisor owns the single playback process. At most one process is
// alive at any time: Play on a live process only asks it to stop.
//
// Cancelling a process context is the skip signal; EventFailed on the
// events channel is the failure signal. A process is reaped once its
// task returns.
type Supervisor struct {
	mu sync.Mutex

	fetcher AudioFetcher
	decoder Decoder
	logger  zerolog.Logger
	now     func() time.Time
	pipe    func() (r, w *os.File, err error)

	proc       *process
	control    *os.File // Write end of the control pipe
	nowPlaying NowPlaying
	events     chan Event
}

// NewSupervisor creates an idle Supervisor.
func NewSupervisor(fetcher AudioFetcher, decoder Decoder, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		fetcher: fetcher,
		decoder: decoder,
		logger:  logger.With().Str("component", "playback").Logger(),
		now:     time.Now,
		pipe:    os.Pipe,
		events:  make(chan Event, eventBuffer),
	}
}

// Events returns the channel process events are delivered on.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Play starts a process for the head of pl.
//
// It returns Failed with ErrEmptyPlaylist when nothing is left, and
// Skipped after signalling a live process to stop. The caller plays
// again once the process has exited and the playlist advanced.
func (s *Supervisor) Play(pl *playlist.Playlist) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pl == nil || pl.Left() == 0 {
		return Failed, ErrEmptyPlaylist
	}

	if s.aliveLocked() {
		s.skipLocked()
		return Skipped, nil
	}

	r, w, err := s.pipe()
	if err != nil {
		return Failed, errors.Wrap(err, "failed to open control pipe")
	}

	track, _ := pl.Head()
	s.nowPlaying = snapshot(track, s.now())

	ctx, cancel := context.WithCancel(context.Background())
	p := &process{
		id:     uuid.New(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if s.control != nil {
		_ = s.control.Close()
	}
	s.control = w
	s.proc = p

	s.logger.Info().
		Str("process", p.id.String()).
		Str("artist", track.Creator).
		Str("track", track.Title).
		Msg("Starting playback")

	go s.run(ctx, p, track, r)

	return Started, nil
}

// run is the body of a playback process. It always ends by marking the
// process done and sending EventExited; failures are reported before
// that with EventFailed.
func (s *Supervisor) run(ctx context.Context, p *process, track playlist.Track, control *os.File) {
	err := s.playTrack(ctx, track, control)
	_ = control.Close()

	// A skipped process is not a failed one
	skipped := ctx.Err() != nil
	p.cancel()

	logger := s.logger.With().Str("process", p.id.String()).Logger()

	if err != nil && !skipped {
		logger.Warn().Err(err).Str("location", track.Location).Msg("Playback failed")
		s.emit(Event{
			Type:      EventFailed,
			ProcessID: p.id,
			Err:       &PlaybackError{ProcessID: p.id, Location: track.Location, Err: err},
		})
	}

	close(p.done)
	logger.Debug().Bool("skipped", skipped).Msg("Playback process exited")
	s.emit(Event{Type: EventExited, ProcessID: p.id})
}

func (s *Supervisor) playTrack(ctx context.Context, track playlist.Track, control *os.File) error {
	if track.Location == "" {
		return errors.New("track has no location")
	}

	audio, err := s.fetcher.Fetch(ctx, track.Location)
	if err != nil {
		return errors.Wrap(err, "failed to fetch audio")
	}
	defer func() { _ = audio.Close() }()

	if err := s.decoder.Decode(ctx, audio, control); err != nil {
		return errors.Wrap(err, "decoder failed")
	}
	return nil
}

func (s *Supervisor) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn().
			Str("event", ev.Type.String()).
			Str("process", ev.ProcessID.String()).
			Msg("Event channel full, dropping event")
	}
}

// Skip asks the live process to stop. It reports whether a process was
// signalled.
func (s *Supervisor) Skip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aliveLocked() {
		return false
	}
	s.skipLocked()
	return true
}

func (s *Supervisor) skipLocked() {
	s.proc.interrupted = true
	s.proc.cancel()
	s.logger.Debug().Str("process", s.proc.id.String()).Msg("Sent skip to playback process")
}

// Alive reports whether a playback process is running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveLocked()
}

// aliveLocked reaps an exited process. Must be called with lock held.
func (s *Supervisor) aliveLocked() bool {
	if s.proc == nil {
		return false
	}
	if s.proc.exited() {
		s.proc = nil
		return false
	}
	return true
}

// State returns the lifecycle state of the playback process.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.aliveLocked():
		return StateIdle
	case s.proc.interrupted:
		return StateInterrupting
	default:
		return StateRunning
	}
}

// NowPlaying returns the snapshot of the track given to the live
// process, and false when no process is alive.
func (s *Supervisor) NowPlaying() (NowPlaying, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aliveLocked() {
		return NowPlaying{}, false
	}
	return s.nowPlaying, true
}

// ControlOpen reports whether the supervisor holds a control pipe.
func (s *Supervisor) ControlOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control != nil
}

// Control writes a command to the live process.
func (s *Supervisor) Control(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aliveLocked() || s.control == nil {
		return ErrNoProcess
	}

	if _, err := s.control.Write([]byte{byte(cmd)}); err != nil {
		return errors.Wrapf(err, "failed to send %s", cmd)
	}
	return nil
}

// Wait blocks until the current process has exited or ctx is done.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()

	if p == nil {
		return nil
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop skips the live process, waits for it to exit and releases the
// control pipe.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.Skip()
	err := s.Wait(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.control != nil {
		_ = s.control.Close()
		s.control = nil
	}
	return err
}
