package cmd

import (
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/stationfm/internal/nowplaying"
	"github.com/jfmyers9/stationfm/internal/playback"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"no padding when width is 0", "Hello", 0, "Hello"},
		{"no padding when width is negative", "Hello", -1, "Hello"},
		{"pad short text with spaces", "Hi", 10, "Hi        "},
		{"exact width unchanged", "Hello", 5, "Hello"},
		{"truncate long text with ellipsis", "This is a very long string that needs truncation", 20, "This is a very lo..."},
		{"wide characters padded by columns", "日本語", 10, "日本語    "},
		{"wide characters truncated by columns", "日本語とても長いテキスト", 10, "日本語... "},
		{"empty string padding", "", 5, "     "},
		{"minimum width for truncation", "Hello", 3, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			assert.Equal(t, tt.expected, result)
			if tt.width > 0 {
				assert.Equal(t, tt.width, runewidth.StringWidth(result))
			}
		})
	}
}

func TestFormatTrack(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := nowplaying.Record{
		Track: &playback.NowPlaying{
			Creator: "Metallica",
			Title:   "One",
			Station: "Metallica Radio",
		},
		StationURL: "lastfm://artists/metallica",
		StartTime:  start,
		PlayTime:   30 * time.Second,
	}

	view := newTrackView(rec, start.Add(95*time.Second+300*time.Millisecond))
	assert.Equal(t, 125*time.Second, view.Position)
	assert.False(t, view.Paused)

	out, err := formatTrack(view, "{{.Creator}} - {{.Title}} [{{.Station}}] {{.Position}} {{.StationURL}}")
	require.NoError(t, err)
	assert.Equal(t, "Metallica - One [Metallica Radio] 2m5s lastfm://artists/metallica", out)
}

func TestFormatTrack_InvalidTemplate(t *testing.T) {
	_, err := formatTrack(trackView{}, "{{.Creator")
	assert.Error(t, err)

	_, err = formatTrack(trackView{}, "{{.Missing}}")
	assert.Error(t, err)
}
