package station

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Multi-artist stations are addressed as lastfm://artists/<a>*<b>*<c>
// by users and as lastfm://artists/<id>,<id> by the service.
const (
	artistsSegment = "artists"
	artistNameSep  = "*"
	artistIDSep    = ","
	artistsPrefix  = "lastfm://artists/"
)

// ArtistLookup resolves an artist name to its numeric Last.fm id.
// Implementations return zero for unknown names.
type ArtistLookup interface {
	LookupArtist(ctx context.Context, name string) (int64, error)
}

// Resolver expands symbolic station identifiers.
type Resolver struct {
	lookup ArtistLookup
	logger zerolog.Logger
}

// NewResolver creates a Resolver backed by lookup.
func NewResolver(lookup ArtistLookup, logger zerolog.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// Expand replaces the artist names of a multi-artist station with their
// numeric ids, keeping the input order. Names that do not resolve are
// dropped. Any other identifier is returned unchanged.
func (r *Resolver) Expand(ctx context.Context, identifier string) string {
	if !strings.HasPrefix(identifier, artistsPrefix) {
		r.logger.Debug().Str("station", identifier).Msg("Nothing to expand")
		return identifier
	}

	names := strings.Split(identifier[len(artistsPrefix):], artistNameSep)
	ids := make([]string, 0, len(names))

	for _, name := range names {
		if name == "" {
			continue
		}
		id := r.ResolveArtist(ctx, name)
		r.logger.Debug().Str("artist", name).Int64("id", id).Msg("Resolved artist")
		if id != 0 {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
	}

	expanded := URL{Scheme: Scheme}.Join(artistsSegment, strings.Join(ids, artistIDSep)).String()
	r.logger.Debug().
		Str("station", identifier).
		Str("expanded", expanded).
		Msg("Expanded multi-artist station")

	return expanded
}

// ResolveArtist returns the numeric id of name, or zero when the lookup
// fails or the artist is unknown.
func (r *Resolver) ResolveArtist(ctx context.Context, name string) int64 {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	id, err := r.lookup.LookupArtist(ctx, name)
	if err != nil {
		r.logger.Debug().Err(err).Str("artist", name).Msg("Artist lookup failed")
		return 0
	}
	if id < 0 {
		return 0
	}
	return id
}
