// Package radio switches stations and drives playback of the tuned
// station's playlist.
package radio

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/playlist"
	"github.com/jfmyers9/stationfm/internal/station"
)

// Service is the remote radio API.
type Service interface {
	// Authenticated reports whether a session is active.
	Authenticated() bool
	// Tune sets the station of the session and returns its display name.
	Tune(ctx context.Context, station string) (string, error)
}

// Expander rewrites a canonical station identifier into the form the
// service accepts.
type Expander interface {
	Expand(ctx context.Context, identifier string) string
}

// Player is the part of the playback supervisor the controller needs.
type Player interface {
	Alive() bool
	Skip() bool
}

// History records tuned stations.
type History interface {
	Append(ctx context.Context, station string) error
}

// Controller owns the station state: the current station, the pending
// delayed change and the playlist.
//
// Controller is not safe for concurrent use. It is driven by a single
// goroutine, the Runner.
type Controller struct {
	service  Service
	expander Expander
	playlist *playlist.Manager
	player   Player
	history  History
	out      io.Writer
	logger   zerolog.Logger

	delayChange bool
	current     string // Canonical identifier, "" before the first tune
	pending     string
}

// ControllerConfig holds the collaborators of a Controller. History may
// be nil.
type ControllerConfig struct {
	Service     Service
	Expander    Expander
	Playlist    *playlist.Manager
	Player      Player
	History     History
	Out         io.Writer // User notices, io.Discard if nil
	DelayChange bool
}

// NewController creates a Controller with no station tuned.
func NewController(cfg ControllerConfig, logger zerolog.Logger) *Controller {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Controller{
		service:     cfg.Service,
		expander:    cfg.Expander,
		playlist:    cfg.Playlist,
		player:      cfg.Player,
		history:     cfg.History,
		out:         out,
		logger:      logger.With().Str("component", "radio").Logger(),
		delayChange: cfg.DelayChange,
	}
}

// Current returns the canonical identifier of the tuned station.
func (c *Controller) Current() string {
	return c.current
}

// PendingStation returns the station waiting for the current track to
// end, or "".
func (c *Controller) PendingStation() string {
	return c.pending
}

// SetDelayChange enables or disables delayed station changes. A change
// already pending is still applied when the track ends.
func (c *Controller) SetDelayChange(enabled bool) {
	c.delayChange = enabled
}

// DelayChange reports whether station changes wait for the track to end.
func (c *Controller) DelayChange() bool {
	return c.delayChange
}

// Tune switches to the station named by identifier. It accepts bare
// paths ("artists/cher"), lastfm:// identifiers and legacy listen URLs.
//
// With delayed changes enabled and a track playing, the switch is only
// recorded and happens when the track ends; tuning to the current
// station or to "" then cancels it. Tuning to the current station is
// otherwise a no-op.
//
// A successful switch replaces the playlist and skips the live track.
func (c *Controller) Tune(ctx context.Context, identifier string) error {
	canonical := station.Normalize(identifier)

	if c.delayChange && c.player.Alive() {
		c.delay(canonical)
		return nil
	}

	if c.current != "" && canonical == c.current {
		return nil
	}

	return c.tune(ctx, canonical)
}

// delay records or cancels a delayed change.
func (c *Controller) delay(canonical string) {
	switch {
	case c.pending != "":
		c.pending = ""
		if canonical == "" || canonical == c.current {
			_, _ = fmt.Fprintln(c.out, "Station change cancelled.")
			return
		}
	case canonical == "" || canonical == c.current:
		return
	}

	c.pending = canonical
	_, _ = fmt.Fprintln(c.out, "Delayed.")
	c.logger.Debug().Str("station", canonical).Msg("Delayed station change")
}

// ApplyPending performs a delayed change once the track it waited for
// has ended. It reports whether a change was pending.
func (c *Controller) ApplyPending(ctx context.Context) (bool, error) {
	if c.pending == "" {
		return false, nil
	}

	next := c.pending
	c.pending = ""

	if next == c.current {
		return true, nil
	}
	return true, c.tune(ctx, next)
}

func (c *Controller) tune(ctx context.Context, canonical string) error {
	// The old playlist is dropped even when the switch is rejected below
	c.playlist.Clear()

	if !c.service.Authenticated() {
		_, _ = fmt.Fprintln(c.out, "Not authenticated, yet.")
		return ErrNotAuthenticated
	}

	if canonical == "" {
		return ErrEmptyStation
	}

	short := station.Short(canonical)
	expanded := c.expander.Expand(ctx, canonical)
	c.logger.Debug().Str("station", expanded).Msg("Expanded station")

	name, err := c.service.Tune(ctx, expanded)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			remote.Station = short
			_, _ = fmt.Fprintf(c.out, "Sorry, couldn't set station to %s. %s.\n", short, remote.Message)
			return remote
		}
		c.logger.Debug().Err(err).Str("station", expanded).Msg("Tune failed")
		return noResponse(err)
	}

	if name != "" {
		c.playlist.SetTitle(name)
	}

	if err := c.playlist.Expand(ctx); err != nil {
		c.logger.Warn().Err(err).Str("station", short).Msg("Failed to fetch playlist")
	}

	if c.history != nil {
		if err := c.history.Append(ctx, short); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record station history")
		}
	}

	c.current = canonical

	c.logger.Info().
		Str("station", canonical).
		Str("title", c.playlist.Title()).
		Int("tracks", c.playlist.Left()).
		Msg("Tuned station")

	if c.player.Skip() {
		c.logger.Debug().Msg("Interrupted playback for new station")
	}

	return nil
}
