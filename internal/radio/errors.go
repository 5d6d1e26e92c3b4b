package radio

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotAuthenticated is returned by Tune without an active session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmptyStation is returned by Tune when the identifier is empty
	// after normalization.
	ErrEmptyStation = errors.New("station is empty")

	// ErrNoResponse is in the chain of every error of a remote call that
	// produced no usable response. Both errors.Is implementations find it.
	ErrNoResponse = errors.New("no response from service")
)

// noResponse wraps err so that it matches ErrNoResponse while keeping err
// as its cause.
func noResponse(err error) error {
	if errors.Is(err, ErrNoResponse) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNoResponse, err)
}

// RemoteError is returned when the service rejected a station.
type RemoteError struct {
	Station string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("couldn't set station to %s: %s", e.Station, e.Message)
}
