// Package history records the stations that were tuned, backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// Store persists station history
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one station in the history list
type Entry struct {
	Station    string
	LastPlayed time.Time
	Plays      int
}

// Open opens (or creates) the history database at dbPath
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// A single connection keeps :memory: databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "failed to set %q", pragma)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS stations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station TEXT NOT NULL,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_station ON stations(station);
	`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append records that station was tuned now
func (s *Store) Append(ctx context.Context, station string) error {
	if station == "" {
		return errors.New("station is empty")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stations (station, played_at) VALUES (?, ?)`,
		station, s.now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert station")
	}
	return nil
}

// Recent returns distinct stations, most recently tuned first. A limit
// of zero or less returns all of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT station, MAX(played_at), COUNT(*)
		FROM stations
		GROUP BY station
		ORDER BY MAX(id) DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var playedUnix int64
		if err := rows.Scan(&e.Station, &playedUnix, &e.Plays); err != nil {
			return nil, errors.Wrap(err, "failed to scan history entry")
		}
		e.LastPlayed = time.Unix(playedUnix, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating history")
	}
	return entries, nil
}

// Last returns the most recently tuned station, or "" for an empty
// history.
func (s *Store) Last(ctx context.Context) (string, error) {
	var station string
	err := s.db.QueryRowContext(ctx,
		`SELECT station FROM stations ORDER BY id DESC LIMIT 1`,
	).Scan(&station)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to query last station")
	}
	return station, nil
}

// Cleanup removes entries older than maxAge
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE played_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to cleanup history")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}
	return deleted, nil
}
