package lastfm

import (
	"time"
)

// Token represents an authentication token from auth.getToken.
type Token struct {
	Token string // The authentication token
}

// Session represents an authenticated session from auth.getSession.
type Session struct {
	Key        string // Session key for authenticated requests
	Username   string // Last.fm username
	Subscriber bool   // Whether user is a subscriber
}

// Station represents the response from radio.tune.
type Station struct {
	Type              string // Station type, e.g. "artist" or "tag"
	Name              string // Display name, e.g. "Cher Similar Artists"
	URL               string // Canonical lastfm:// station URL
	SupportsDiscovery bool   // Whether discovery mode is available
}

// Playlist represents the XSPF playlist returned by radio.getPlaylist.
type Playlist struct {
	Title   string
	Creator string
	Expiry  time.Duration // How long the track locations stay valid
	Tracks  []PlaylistTrack
}

// PlaylistTrack is one streamable track of a radio playlist.
type PlaylistTrack struct {
	Location     string        // Audio stream URL
	Title        string        // Track title
	Identifier   string        // Last.fm track id
	Album        string        // Album title
	Creator      string        // Artist name
	Duration     time.Duration // Track length
	Image        string        // Cover art URL
	TrackAuth    string        // Authorisation code for scrobbling radio plays
	TrackPage    string        // Last.fm track page
	ArtistPage   string        // Last.fm artist page
	AlbumPage    string        // Last.fm album page
	FreeTrackURL string        // Free download, if offered
}

// PlaylistOptions tunes the radio.getPlaylist request.
type PlaylistOptions struct {
	Discovery bool // Prefer tracks the user has not heard yet
	RTP       bool // Whether the user is scrobbling the tracks
	Bitrate   int  // 64 or 128, zero leaves the server default
}

// Resource is the result of a web resource lookup.
type Resource struct {
	ID   int64  // Numeric resource id, zero when the name is unknown
	Type string // Resource type, e.g. "artist"
	Name string // Name as known by Last.fm
}
