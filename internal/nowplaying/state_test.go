package nowplaying

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/stationfm/internal/playback"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
	s := NewStore(filepath.Join(t.TempDir(), "nested", "now.json"))
	s.now = clock.now
	return s, clock
}

func testTrack(started time.Time) playback.NowPlaying {
	return playback.NowPlaying{
		Creator:   "Metallica",
		Title:     "Enter Sandman",
		Album:     "Metallica",
		Duration:  331 * time.Second,
		Station:   "Metallica Radio",
		StartedAt: started,
	}
}

func TestStore_SetAndLoad(t *testing.T) {
	s, clock := newTestStore(t)

	require.NoError(t, s.Set(testTrack(clock.t), "lastfm://artists/metallica"))

	rec, err := Load(s.filePath)
	require.NoError(t, err)
	require.NotNil(t, rec.Track)
	assert.Equal(t, "Enter Sandman", rec.Track.Title)
	assert.Equal(t, "Metallica Radio", rec.Track.Station)
	assert.Equal(t, "lastfm://artists/metallica", rec.StationURL)
	assert.True(t, rec.StartTime.Equal(clock.t))
	assert.False(t, rec.Paused())

	_, err = os.Stat(s.filePath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestStore_Set_DefaultsStartTime(t *testing.T) {
	s, clock := newTestStore(t)

	require.NoError(t, s.Set(testTrack(time.Time{}), ""))
	assert.True(t, s.Get().StartTime.Equal(clock.t))
}

func TestStore_PauseAccounting(t *testing.T) {
	s, clock := newTestStore(t)
	require.NoError(t, s.Set(testTrack(clock.t), "lastfm://globaltags/jazz"))

	clock.advance(30 * time.Second)
	require.NoError(t, s.TogglePause())
	assert.True(t, s.Get().Paused())

	// Time spent paused does not count
	clock.advance(time.Minute)
	assert.Equal(t, 30*time.Second, s.Get().Played(clock.t))

	require.NoError(t, s.TogglePause())
	assert.False(t, s.Get().Paused())

	clock.advance(10 * time.Second)
	assert.Equal(t, 40*time.Second, s.Get().Played(clock.t))

	rec, err := Load(s.filePath)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, rec.PlayTime)
}

func TestStore_SetPaused_NoTrack(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.SetPaused(true))
	assert.False(t, s.Get().Paused())

	_, err := os.Stat(s.filePath)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clear(t *testing.T) {
	s, clock := newTestStore(t)
	require.NoError(t, s.Set(testTrack(clock.t), ""))

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Get().Track)

	rec, err := Load(s.filePath)
	require.NoError(t, err)
	assert.Nil(t, rec.Track)

	// Clearing twice is fine
	require.NoError(t, s.Clear())
}

func TestStore_InMemory(t *testing.T) {
	s := NewStore("")
	require.NoError(t, s.Set(testTrack(time.Now()), ""))
	assert.Equal(t, "Enter Sandman", s.Get().Track.Title)
	require.NoError(t, s.Clear())
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "now.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRecord_Played_NoTrack(t *testing.T) {
	assert.Equal(t, time.Duration(0), Record{}.Played(time.Now()))
}
