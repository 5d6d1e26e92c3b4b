package playlist

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/pkg/lastfm"
)

// Fetcher fetches the next tracks of the tuned station.
type Fetcher interface {
	FetchPlaylist(ctx context.Context) (title string, tracks []Track, err error)
}

// Manager owns the playlist of the current station.
type Manager struct {
	fetcher    Fetcher
	playlist   Playlist
	generation uint64
	logger     zerolog.Logger
}

// NewManager creates a Manager with an empty playlist.
func NewManager(fetcher Fetcher, logger zerolog.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "playlist").Logger(),
	}
}

// Playlist returns the managed playlist.
func (m *Manager) Playlist() *Playlist {
	return &m.playlist
}

// Left returns the number of tracks remaining.
func (m *Manager) Left() int {
	return m.playlist.Left()
}

// Title returns the station title of the playlist.
func (m *Manager) Title() string {
	return m.playlist.Title
}

// SetTitle sets the station title shown for the playlist.
func (m *Manager) SetTitle(title string) {
	m.playlist.Title = title
}

// Clear empties the playlist and releases its title.
func (m *Manager) Clear() {
	m.playlist.Clear()
	m.generation++
}

// Generation changes every time the playlist is cleared. A track started
// under an older generation belongs to a playlist that was replaced.
func (m *Manager) Generation() uint64 {
	return m.generation
}

// Advance drops the track that just finished.
func (m *Manager) Advance() {
	m.playlist.Shift()
}

// Expand fetches the next batch of tracks for the tuned station and
// appends them. Tracks inherit the playlist title as their station
// name. The title is only taken from the response when none is set.
func (m *Manager) Expand(ctx context.Context) error {
	title, tracks, err := m.fetcher.FetchPlaylist(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch playlist")
	}

	if m.playlist.Title == "" {
		m.playlist.Title = title
	}

	for i := range tracks {
		if tracks[i].Station == "" {
			tracks[i].Station = m.playlist.Title
		}
	}

	m.playlist.Append(tracks...)

	m.logger.Debug().
		Int("fetched", len(tracks)).
		Int("left", m.playlist.Left()).
		Str("title", m.playlist.Title).
		Msg("Expanded playlist")

	return nil
}

// LastFMFetcher fetches playlists with radio.getPlaylist.
type LastFMFetcher struct {
	radio   *lastfm.RadioService
	options lastfm.PlaylistOptions
}

// NewLastFMFetcher creates a Fetcher for the given Last.fm client.
func NewLastFMFetcher(client *lastfm.Client, opts lastfm.PlaylistOptions) *LastFMFetcher {
	return &LastFMFetcher{radio: client.Radio(), options: opts}
}

// FetchPlaylist implements Fetcher.
func (f *LastFMFetcher) FetchPlaylist(ctx context.Context) (string, []Track, error) {
	pl, err := f.radio.GetPlaylist(ctx, f.options)
	if err != nil {
		return "", nil, err
	}

	tracks := make([]Track, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		tracks = append(tracks, FromLastFM(t))
	}

	// XSPF titles come form-encoded ("+Cher+Radio")
	title := pl.Title
	if unescaped, err := url.QueryUnescape(title); err == nil {
		title = unescaped
	}

	return strings.TrimSpace(title), tracks, nil
}

// FromLastFM converts an API playlist entry to a Track.
func FromLastFM(t lastfm.PlaylistTrack) Track {
	return Track{
		Creator:      t.Creator,
		Title:        t.Title,
		Album:        t.Album,
		Duration:     t.Duration,
		TrackAuth:    t.TrackAuth,
		TrackPage:    t.TrackPage,
		ArtistPage:   t.ArtistPage,
		AlbumPage:    t.AlbumPage,
		Image:        t.Image,
		FreeTrackURL: t.FreeTrackURL,
		Location:     t.Location,
	}
}
