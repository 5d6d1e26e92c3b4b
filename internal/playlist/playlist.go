// Package playlist holds the queue of tracks for the tuned station.
package playlist

import (
	"time"
)

// Track is one streamable item of a station playlist. Only these fields
// are kept from the service response.
type Track struct {
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
	Location     string        `json:"location"`
}

// Playlist is an ordered queue of tracks belonging to one station.
// The head is the track playing (or about to play).
type Playlist struct {
	Title  string
	tracks []Track
}

// Left returns the number of tracks remaining, the head included.
func (p *Playlist) Left() int {
	return len(p.tracks)
}

// Head returns the first track of the queue.
func (p *Playlist) Head() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	return p.tracks[0], true
}

// Shift drops the head of the queue.
func (p *Playlist) Shift() {
	if len(p.tracks) == 0 {
		return
	}
	p.tracks[0] = Track{}
	p.tracks = p.tracks[1:]
}

// Append adds tracks to the tail of the queue.
func (p *Playlist) Append(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Tracks returns a copy of the queued tracks.
func (p *Playlist) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Clear empties the queue and releases the title.
func (p *Playlist) Clear() {
	p.Title = ""
	p.tracks = nil
}
