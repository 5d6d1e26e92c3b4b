package radio

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/stationfm/internal/playlist"
)

type fakeService struct {
	authenticated bool
	names         map[string]string // Expanded station -> display name
	err           error
	calls         []string
}

func (s *fakeService) Authenticated() bool { return s.authenticated }

func (s *fakeService) Tune(_ context.Context, station string) (string, error) {
	s.calls = append(s.calls, station)
	if s.err != nil {
		return "", s.err
	}
	return s.names[station], nil
}

// tuned returns the last station the service accepted.
func (s *fakeService) tuned() string {
	if len(s.calls) == 0 || s.err != nil {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

type fakeExpander map[string]string

func (e fakeExpander) Expand(_ context.Context, identifier string) string {
	if expanded, ok := e[identifier]; ok {
		return expanded
	}
	return identifier
}

type fakePlayer struct {
	alive bool
	skips int
}

func (p *fakePlayer) Alive() bool { return p.alive }

func (p *fakePlayer) Skip() bool {
	if !p.alive {
		return false
	}
	p.skips++
	return true
}

type fakeHistory struct {
	stations []string
}

func (h *fakeHistory) Append(_ context.Context, station string) error {
	h.stations = append(h.stations, station)
	return nil
}

// stationFetcher serves two tracks for whatever station the service
// was tuned to last.
type stationFetcher struct {
	service *fakeService
	calls   int
}

func (f *stationFetcher) FetchPlaylist(context.Context) (string, []playlist.Track, error) {
	f.calls++
	st := strings.TrimPrefix(f.service.tuned(), "lastfm://")
	return "+Fetched+" + st, []playlist.Track{
		{Creator: "Artist", Title: st + " #1", Location: "http://play.example/" + st + "/1.mp3"},
		{Creator: "Artist", Title: st + " #2", Location: "http://play.example/" + st + "/2.mp3"},
	}, nil
}

type controllerFixture struct {
	service  *fakeService
	fetcher  *stationFetcher
	playlist *playlist.Manager
	player   *fakePlayer
	history  *fakeHistory
	out      *bytes.Buffer
	ctrl     *Controller
}

func newControllerFixture(t *testing.T, delayChange bool) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		service: &fakeService{
			authenticated: true,
			names: map[string]string{
				"lastfm://artists/52":      "Metallica Radio",
				"lastfm://globaltags/jazz": "Jazz Tag Radio",
			},
		},
		player:  &fakePlayer{},
		history: &fakeHistory{},
		out:     &bytes.Buffer{},
	}
	f.fetcher = &stationFetcher{service: f.service}
	f.playlist = playlist.NewManager(f.fetcher, zerolog.Nop())
	f.ctrl = NewController(ControllerConfig{
		Service:     f.service,
		Expander:    fakeExpander{"lastfm://artists/metallica": "lastfm://artists/52"},
		Playlist:    f.playlist,
		Player:      f.player,
		History:     f.history,
		Out:         f.out,
		DelayChange: delayChange,
	}, zerolog.Nop())
	return f
}

func TestController_Tune(t *testing.T) {
	f := newControllerFixture(t, false)

	err := f.ctrl.Tune(context.Background(), "artists/metallica")
	require.NoError(t, err)

	assert.Equal(t, "lastfm://artists/metallica", f.ctrl.Current())
	assert.Equal(t, []string{"lastfm://artists/52"}, f.service.calls)
	assert.Equal(t, "Metallica Radio", f.playlist.Title())
	assert.Equal(t, 2, f.playlist.Left())
	assert.Equal(t, []string{"artists/metallica"}, f.history.stations)
	assert.Empty(t, f.out.String())

	head, ok := f.playlist.Playlist().Head()
	require.True(t, ok)
	assert.Equal(t, "Metallica Radio", head.Station)
}

func TestController_Tune_SameStation(t *testing.T) {
	f := newControllerFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.playlist.Advance()

	for _, id := range []string{
		"artists/metallica",
		"lastfm://artists/metallica",
		"LASTFM://artists/metallica",
		"http://www.last.fm/listen/artists/metallica",
	} {
		require.NoError(t, f.ctrl.Tune(ctx, id), id)
	}

	assert.Len(t, f.service.calls, 1, "no remote call for the current station")
	assert.Equal(t, 1, f.playlist.Left(), "playlist untouched")
	assert.Equal(t, "Metallica Radio", f.playlist.Title())
	assert.Equal(t, 1, f.fetcher.calls)
}

func TestController_Tune_NotAuthenticated(t *testing.T) {
	f := newControllerFixture(t, false)
	f.service.authenticated = false
	f.playlist.SetTitle("Old Radio")

	err := f.ctrl.Tune(context.Background(), "globaltags/jazz")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "Not authenticated, yet.\n", f.out.String())

	assert.Empty(t, f.service.calls)
	assert.Empty(t, f.ctrl.Current())
	assert.Empty(t, f.playlist.Title(), "playlist is cleared before validation")
}

func TestController_Tune_Empty(t *testing.T) {
	f := newControllerFixture(t, false)

	for _, id := range []string{"", "   ", "http://www.last.fm/listen/"} {
		err := f.ctrl.Tune(context.Background(), id)
		assert.ErrorIs(t, err, ErrEmptyStation, "%q", id)
	}

	assert.Empty(t, f.out.String())
	assert.Empty(t, f.service.calls)
}

func TestController_Tune_RemoteError(t *testing.T) {
	f := newControllerFixture(t, false)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))

	f.service.err = &RemoteError{Code: 20, Message: "There is not enough content to play this station"}

	err := f.ctrl.Tune(ctx, "globaltags/nothing")

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "globaltags/nothing", remote.Station)
	assert.Equal(t,
		"Sorry, couldn't set station to globaltags/nothing. There is not enough content to play this station.\n",
		f.out.String())

	assert.Equal(t, "lastfm://artists/metallica", f.ctrl.Current(), "station identity unchanged")
	assert.Equal(t, []string{"artists/metallica"}, f.history.stations)
}

func TestController_Tune_NoResponse(t *testing.T) {
	f := newControllerFixture(t, false)
	f.service.err = errors.New("connection reset by peer")

	err := f.ctrl.Tune(context.Background(), "globaltags/jazz")
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Empty(t, f.out.String())
	assert.Empty(t, f.ctrl.Current())
	assert.Empty(t, f.history.stations)
}

func TestController_Tune_InterruptsPlayback(t *testing.T) {
	f := newControllerFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.player.alive = true

	require.NoError(t, f.ctrl.Tune(ctx, "globaltags/jazz"))

	assert.Equal(t, "lastfm://globaltags/jazz", f.ctrl.Current())
	assert.Equal(t, 1, f.player.skips)
	assert.Equal(t, "Jazz Tag Radio", f.playlist.Title())
	assert.Empty(t, f.ctrl.PendingStation())
}

func TestController_Tune_FailureDoesNotInterrupt(t *testing.T) {
	f := newControllerFixture(t, false)
	f.player.alive = true
	f.service.err = &RemoteError{Message: "Station not found"}

	assert.Error(t, f.ctrl.Tune(context.Background(), "globaltags/nothing"))
	assert.Equal(t, 0, f.player.skips)
}

func TestController_DelayedChange(t *testing.T) {
	f := newControllerFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.player.alive = true
	calls := len(f.service.calls)

	require.NoError(t, f.ctrl.Tune(ctx, "globaltags/jazz"))
	assert.Equal(t, "lastfm://globaltags/jazz", f.ctrl.PendingStation())
	assert.Equal(t, "Delayed.\n", f.out.String())
	assert.Equal(t, "lastfm://artists/metallica", f.ctrl.Current())
	assert.Len(t, f.service.calls, calls, "no remote call while delayed")
	assert.Equal(t, 0, f.player.skips)
	assert.Equal(t, 2, f.playlist.Left(), "playlist kept while delayed")
}

func TestController_DelayedChange_Cancel(t *testing.T) {
	for _, cancelWith := range []string{"", "artists/metallica", "lastfm://artists/metallica"} {
		t.Run(cancelWith, func(t *testing.T) {
			f := newControllerFixture(t, true)
			ctx := context.Background()

			require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
			f.player.alive = true

			require.NoError(t, f.ctrl.Tune(ctx, "globaltags/jazz"))
			f.out.Reset()

			require.NoError(t, f.ctrl.Tune(ctx, cancelWith))
			assert.Empty(t, f.ctrl.PendingStation())
			assert.Equal(t, "Station change cancelled.\n", f.out.String())
			assert.Equal(t, "lastfm://artists/metallica", f.ctrl.Current())
			assert.Len(t, f.service.calls, 1)

			applied, err := f.ctrl.ApplyPending(ctx)
			require.NoError(t, err)
			assert.False(t, applied)
		})
	}
}

func TestController_DelayedChange_Replace(t *testing.T) {
	f := newControllerFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.player.alive = true

	require.NoError(t, f.ctrl.Tune(ctx, "globaltags/jazz"))
	require.NoError(t, f.ctrl.Tune(ctx, "globaltags/rock"))

	assert.Equal(t, "lastfm://globaltags/rock", f.ctrl.PendingStation())
	assert.Equal(t, "Delayed.\nDelayed.\n", f.out.String())
}

func TestController_DelayedChange_NoOps(t *testing.T) {
	f := newControllerFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.player.alive = true

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	require.NoError(t, f.ctrl.Tune(ctx, ""))

	assert.Empty(t, f.ctrl.PendingStation())
	assert.Empty(t, f.out.String())
}

func TestController_DelayedChange_NotPlaying(t *testing.T) {
	f := newControllerFixture(t, true)

	require.NoError(t, f.ctrl.Tune(context.Background(), "globaltags/jazz"))

	assert.Equal(t, "lastfm://globaltags/jazz", f.ctrl.Current())
	assert.Empty(t, f.ctrl.PendingStation())
	assert.Empty(t, f.out.String())
}

func TestController_ApplyPending(t *testing.T) {
	f := newControllerFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Tune(ctx, "artists/metallica"))
	f.player.alive = true
	require.NoError(t, f.ctrl.Tune(ctx, "globaltags/jazz"))

	// The track ended
	f.player.alive = false

	applied, err := f.ctrl.ApplyPending(ctx)
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, "lastfm://globaltags/jazz", f.ctrl.Current())
	assert.Empty(t, f.ctrl.PendingStation())
	assert.Equal(t, "Jazz Tag Radio", f.playlist.Title())
	assert.Equal(t, []string{"artists/metallica", "globaltags/jazz"}, f.history.stations)
}

func TestController_SetDelayChange(t *testing.T) {
	f := newControllerFixture(t, false)
	assert.False(t, f.ctrl.DelayChange())

	f.ctrl.SetDelayChange(true)
	assert.True(t, f.ctrl.DelayChange())
}
