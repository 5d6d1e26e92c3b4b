// Package station normalises and expands Last.fm radio station URLs.
package station

import (
	"strings"
)

// Scheme is the scheme of canonical station URLs.
const Scheme = "lastfm"

const schemeSep = "://"

// legacyPrefixes are web player links that address a station by path.
var legacyPrefixes = []string{
	"http://www.last.fm/listen/",
	"https://www.last.fm/listen/",
}

// URL is a parsed station identifier, e.g. lastfm://artists/1,3.
type URL struct {
	Scheme   string
	Segments []string
}

// Parse splits a station identifier into scheme and path segments.
// Identifiers without a scheme get the lastfm scheme. Parse never fails:
// station paths are opaque to the client.
func Parse(s string) URL {
	u := URL{Scheme: Scheme}

	rest := s
	if i := strings.Index(s, schemeSep); i > 0 {
		u.Scheme = strings.ToLower(s[:i])
		rest = s[i+len(schemeSep):]
	}

	if rest != "" {
		u.Segments = strings.Split(rest, "/")
	}
	return u
}

// Path returns the segments joined with slashes.
func (u URL) Path() string {
	return strings.Join(u.Segments, "/")
}

// String renders the URL in canonical form.
func (u URL) String() string {
	scheme := u.Scheme
	if scheme == "" {
		scheme = Scheme
	}
	return scheme + schemeSep + u.Path()
}

// HasPrefix reports whether the leading segments of u equal segs.
func (u URL) HasPrefix(segs ...string) bool {
	if len(u.Segments) < len(segs) {
		return false
	}
	for i, s := range segs {
		if u.Segments[i] != s {
			return false
		}
	}
	return true
}

// Join returns a copy of u with segs appended.
func (u URL) Join(segs ...string) URL {
	out := URL{Scheme: u.Scheme, Segments: make([]string, 0, len(u.Segments)+len(segs))}
	out.Segments = append(out.Segments, u.Segments...)
	out.Segments = append(out.Segments, segs...)
	return out
}

// Normalize turns any accepted station form into the canonical
// lastfm:// identifier. Bare paths ("artists/cher"), lastfm:// URLs in
// any scheme case and legacy web player links all map to the same
// string. An identifier that is empty after stripping stays empty.
func Normalize(identifier string) string {
	s := strings.TrimSpace(identifier)

	for _, prefix := range legacyPrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
			break
		}
	}

	if s == "" {
		return ""
	}

	full := Scheme + schemeSep
	if len(s) >= len(full) && strings.EqualFold(s[:len(full)], full) {
		s = s[len(full):]
		if s == "" {
			return ""
		}
	}

	return URL{Scheme: Scheme, Segments: strings.Split(s, "/")}.String()
}

// Short strips the scheme from a canonical identifier. It is the form
// stations are recorded in the history.
func Short(identifier string) string {
	if i := strings.Index(identifier, schemeSep); i >= 0 {
		return identifier[i+len(schemeSep):]
	}
	return identifier
}
