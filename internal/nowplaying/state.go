// Package nowplaying persists the track the player is currently playing
// so that other stationfm commands can display it.
package nowplaying

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jfmyers9/stationfm/internal/playback"
)

// Record is the now-playing state of the player.
type Record struct {
	Track      *playback.NowPlaying // Current track (nil if stopped)
	StationURL string               // Canonical identifier of the tuned station
	StartTime  time.Time            // When playback started (or resumed)
	PausedAt   time.Time            // When the track was paused (zero if not paused)
	PlayTime   time.Duration        // Accumulated play time before StartTime
}

// Paused reports whether the track is paused.
func (r Record) Paused() bool {
	return !r.PausedAt.IsZero()
}

// Played returns how long the track has been audible.
func (r Record) Played(now time.Time) time.Duration {
	switch {
	case r.Track == nil:
		return 0
	case r.Paused():
		return r.PlayTime + r.PausedAt.Sub(r.StartTime)
	default:
		return r.PlayTime + now.Sub(r.StartTime)
	}
}

// persistedRecord is the JSON representation of a Record on disk
type persistedRecord struct {
	Track      *playback.NowPlaying `json:"track,omitempty"`
	StationURL string               `json:"station_url,omitempty"`
	StartTime  time.Time            `json:"start_time"`
	PausedAt   time.Time            `json:"paused_at,omitempty"`
	PlayTime   time.Duration        `json:"play_time"`
}

// Store holds the now-playing record and writes every change to disk.
type Store struct {
	mu       sync.RWMutex
	current  Record
	filePath string
	now      func() time.Time
}

// NewStore creates a store persisting to filePath. An empty path keeps
// the record in memory only.
func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
		now:      time.Now,
	}
}

// Set records a track that just started playing on station.
func (s *Store) Set(track playback.NowPlaying, stationURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := track.StartedAt
	if start.IsZero() {
		start = s.now()
	}

	s.current = Record{
		Track:      &track,
		StationURL: stationURL,
		StartTime:  start,
	}
	return s.persist()
}

// SetPaused marks the current track paused or resumed, accumulating the
// time it played before the pause.
func (s *Store) SetPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Track == nil || s.current.Paused() == paused {
		return nil
	}

	now := s.now()
	if paused {
		s.current.PausedAt = now
	} else {
		s.current.PlayTime += s.current.PausedAt.Sub(s.current.StartTime)
		s.current.StartTime = now
		s.current.PausedAt = time.Time{}
	}
	return s.persist()
}

// TogglePause flips the pause state of the current track.
func (s *Store) TogglePause() error {
	s.mu.RLock()
	paused := s.current.Paused()
	s.mu.RUnlock()
	return s.SetPaused(!paused)
}

// Get returns a copy of the current record.
func (s *Store) Get() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear forgets the current track.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Record{}
	if s.filePath == "" {
		return nil
	}
	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove state file")
	}
	return nil
}

// persist saves the current record to disk.
// Must be called with lock held.
func (s *Store) persist() error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(persistedRecord(s.current), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode state")
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	// Write atomically via temp file + rename
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write state file")
	}
	return os.Rename(tmpPath, s.filePath)
}

// Load reads a record persisted by a Store. A missing file yields an
// empty record.
func Load(filePath string) (Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, errors.Wrap(err, "failed to read state file")
	}

	var pr persistedRecord
	if err := json.Unmarshal(data, &pr); err != nil {
		return Record{}, errors.Wrap(err, "failed to parse state file")
	}
	return Record(pr), nil
}
