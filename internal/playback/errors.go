package playback

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var (
	// ErrEmptyPlaylist is returned by Play when no track is left.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrNoProcess is returned by Control when no playback process holds
	// the control pipe.
	ErrNoProcess = errors.New("no playback process")
)

// PlaybackError reports that a process could not fetch or decode its
// track. It is delivered asynchronously with an EventFailed event.
type PlaybackError struct {
	ProcessID uuid.UUID
	Location  string
	Err       error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %s failed: %v", e.Location, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
