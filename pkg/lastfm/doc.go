// Package lastfm provides a client library for the Last.fm API 2.0.
//
// # Overview
//
// This package implements a Go client for the Last.fm radio API. It
// covers authentication, tuning a station, fetching the station's
// playlist and resolving artist names to the numeric ids used by
// multi-artist stations.
//
// # Quick Start
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    APISecret:  "your-api-secret",
//	    SessionKey: "saved-session-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Authentication
//
// Last.fm uses a token-based authentication flow:
//
//  1. Get a token from Last.fm (Auth().GetToken)
//  2. Direct the user to authorize the token (Auth().GetAuthURL)
//  3. Exchange the token for a session key (Auth().GetSession)
//  4. Store and reuse the session key
//
// # Radio
//
// Radio is stateful on the server: tune a station, then keep fetching
// playlists for it.
//
//	station, err := client.Radio().Tune(ctx, "lastfm://globaltags/jazz")
//	playlist, err := client.Radio().GetPlaylist(ctx, lastfm.PlaylistOptions{})
//	for _, track := range playlist.Tracks {
//	    fmt.Println(track.Creator, "-", track.Title, track.Location)
//	}
//
// # Resource Lookup
//
//	id, err := client.Resource().LookupArtist(ctx, "Metallica")
//
// # Error Handling
//
// API failures are reported as *Error carrying the Last.fm error code:
//
//	_, err := client.Radio().Tune(ctx, url)
//	var lastfmErr *lastfm.Error
//	if errors.As(err, &lastfmErr) {
//	    fmt.Println(lastfmErr.Message)
//	}
//
// Temporary errors (codes 11 and 16, HTTP 5xx, network errors) are
// retried with exponential backoff up to Config.MaxRetries attempts.
// Set MaxRetries to 1 to disable retries.
package lastfm
