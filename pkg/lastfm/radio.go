package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// RadioService provides the radio operations of the Last.fm API.
//
// Radio is stateful on the server side: radio.tune selects the station
// for the session and radio.getPlaylist returns the next tracks of
// whatever station was tuned last.
type RadioService struct {
	client *Client
}

// Tune selects the station to stream for the current session.
//
// Requires authentication (session key must be set via SetSessionKey).
//
// Example:
//
//	station, err := client.Radio().Tune(ctx, "lastfm://artist/cher/similarartists")
//	if err != nil {
//	    var lfmErr *lastfm.Error
//	    if errors.As(err, &lfmErr) {
//	        fmt.Println("Couldn't tune:", lfmErr.Message)
//	    }
//	}
//	fmt.Println("Now listening to", station.Name)
func (r *RadioService) Tune(ctx context.Context, stationURL string) (*Station, error) {
	if stationURL == "" {
		return nil, fmt.Errorf("lastfm: station URL is required")
	}

	resp, err := r.client.call(ctx, "radio.tune", map[string]string{"station": stationURL}, true)
	if err != nil {
		return nil, err
	}

	var station stationResponse
	if err := unmarshalInner(resp, &station); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse tune response: %w", err)
	}

	return &Station{
		Type:              station.Type,
		Name:              station.Name,
		URL:               station.URL,
		SupportsDiscovery: station.SupportsDiscovery == 1,
	}, nil
}

// GetPlaylist fetches the next batch of tracks for the tuned station.
//
// Requires authentication (session key must be set via SetSessionKey).
func (r *RadioService) GetPlaylist(ctx context.Context, opts PlaylistOptions) (*Playlist, error) {
	params := map[string]string{
		"rtp":       boolParam(opts.RTP),
		"discovery": boolParam(opts.Discovery),
	}
	if opts.Bitrate > 0 {
		params["bitrate"] = strconv.Itoa(opts.Bitrate)
	}

	resp, err := r.client.call(ctx, "radio.getPlaylist", params, true)
	if err != nil {
		return nil, err
	}

	playlist, err := unmarshalPlaylist(resp)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse playlist response: %w", err)
	}

	return playlist, nil
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// stationResponse represents the XML response from radio.tune.
type stationResponse struct {
	Type              string `xml:"station>type"`
	Name              string `xml:"station>name"`
	URL               string `xml:"station>url"`
	SupportsDiscovery int    `xml:"station>supportsdiscovery"`
}

// playlistResponse represents the XSPF document from radio.getPlaylist.
type playlistResponse struct {
	Playlist struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
		Links   []struct {
			Rel   string `xml:"rel,attr"`
			Value string `xml:",chardata"`
		} `xml:"link"`
		Tracks []struct {
			Location   string `xml:"location"`
			Title      string `xml:"title"`
			Identifier string `xml:"identifier"`
			Album      string `xml:"album"`
			Creator    string `xml:"creator"`
			Duration   string `xml:"duration"`
			Image      string `xml:"image"`
			Extension  struct {
				TrackAuth    string `xml:"trackauth"`
				TrackPage    string `xml:"trackpage"`
				ArtistPage   string `xml:"artistpage"`
				AlbumPage    string `xml:"albumpage"`
				FreeTrackURL string `xml:"freeTrackURL"`
			} `xml:"extension"`
		} `xml:"trackList>track"`
	} `xml:"playlist"`
}

const expiryRel = "http://www.last.fm/expiry"

// unmarshalPlaylist parses the XML response from radio.getPlaylist.
func unmarshalPlaylist(data []byte) (*Playlist, error) {
	var resp playlistResponse
	if err := unmarshalInner(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playlist response: %w", err)
	}

	playlist := &Playlist{
		Title:   resp.Playlist.Title,
		Creator: resp.Playlist.Creator,
		Tracks:  make([]PlaylistTrack, 0, len(resp.Playlist.Tracks)),
	}

	for _, link := range resp.Playlist.Links {
		if link.Rel != expiryRel {
			continue
		}
		if secs, err := strconv.Atoi(link.Value); err == nil {
			playlist.Expiry = time.Duration(secs) * time.Second
		}
	}

	for _, t := range resp.Playlist.Tracks {
		// Durations are reported in milliseconds
		var duration time.Duration
		if ms, err := strconv.ParseInt(t.Duration, 10, 64); err == nil {
			duration = time.Duration(ms) * time.Millisecond
		}

		playlist.Tracks = append(playlist.Tracks, PlaylistTrack{
			Location:     t.Location,
			Title:        t.Title,
			Identifier:   t.Identifier,
			Album:        t.Album,
			Creator:      t.Creator,
			Duration:     duration,
			Image:        t.Image,
			TrackAuth:    t.Extension.TrackAuth,
			TrackPage:    t.Extension.TrackPage,
			ArtistPage:   t.Extension.ArtistPage,
			AlbumPage:    t.Extension.AlbumPage,
			FreeTrackURL: t.Extension.FreeTrackURL,
		})
	}

	return playlist, nil
}
