// Package playback supervises the background task that fetches and
// decodes the current track.
package playback

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jfmyers9/stationfm/internal/playlist"
)

// Decoder plays an audio stream until it ends, ctx is cancelled or it
// fails. Control commands arrive as single bytes on control.
type Decoder interface {
	Decode(ctx context.Context, audio io.Reader, control io.Reader) error
}

// AudioFetcher opens the audio stream of a track location.
type AudioFetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// Command is a control byte written to the decoder.
type Command byte

const (
	CommandPause      Command = 'p' // Toggle pause
	CommandVolumeUp   Command = '+'
	CommandVolumeDown Command = '-'
)

// String returns a human-readable representation of the Command
func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandVolumeUp:
		return "volume-up"
	case CommandVolumeDown:
		return "volume-down"
	default:
		return "unknown"
	}
}

// Result is the outcome of Supervisor.Play.
type Result int

const (
	Failed  Result = iota // Nothing left to play, no process started
	Started               // A new process was started
	Skipped               // A live process was asked to stop instead
)

// String returns a human-readable representation of the Result
func (r Result) String() string {
	switch r {
	case Failed:
		return "failed"
	case Started:
		return "started"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of the playback process.
type State int

const (
	StateIdle         State = iota // No process
	StateRunning                   // Process playing its track
	StateInterrupting              // Skip sent, waiting for the process to end
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateInterrupting:
		return "interrupting"
	default:
		return "unknown"
	}
}

// EventType represents a playback event type.
type EventType int

const (
	EventFailed EventType = iota // Process could not fetch or decode its track
	EventExited                  // Process ended, the supervisor is idle again
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventFailed:
		return "failed"
	case EventExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Event is sent by a playback process to the supervisor's owner.
type Event struct {
	Type      EventType
	ProcessID uuid.UUID
	Err       error // Set for EventFailed
}

// NowPlaying is the snapshot of the track handed to the playback
// process. The stream location is not part of it.
type NowPlaying struct {
	Creator      string        `json:"creator"`
	Title        string        `json:"title"`
	Album        string        `json:"album"`
	Duration     time.Duration `json:"duration"`
	Station      string        `json:"station"`
	TrackAuth    string        `json:"trackauth"`
	TrackPage    string        `json:"trackpage"`
	ArtistPage   string        `json:"artistpage"`
	AlbumPage    string        `json:"albumpage"`
	Image        string        `json:"image"`
	FreeTrackURL string        `json:"freeTrackURL"`
	StartedAt    time.Time     `json:"started_at"`
}

func snapshot(t playlist.Track, now time.Time) NowPlaying {
	return NowPlaying{
		Creator:      t.Creator,
		Title:        t.Title,
		Album:        t.Album,
		Duration:     t.Duration,
		Station:      t.Station,
		TrackAuth:    t.TrackAuth,
		TrackPage:    t.TrackPage,
		ArtistPage:   t.ArtistPage,
		AlbumPage:    t.AlbumPage,
		Image:        t.Image,
		FreeTrackURL: t.FreeTrackURL,
		StartedAt:    now,
	}
}
