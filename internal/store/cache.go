// Package store persists snapshots of fetched datasets in a local SQLite
// database so the pipeline can run offline against the last good download.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by Latest when nothing has been cached for the
// requested location.
var ErrNoSnapshot = errors.New("no cached snapshot for location")

// Snapshot is one cached download: the raw CSV plus enough metadata to
// answer "what did we fetch, from where, and when".
type Snapshot struct {
	ID        int64
	RunID     string
	Location  string
	FetchedAt time.Time
	RowCount  int
	CSV       []byte
}

// Cache is a SQLite-backed snapshot store. Safe for use from a single
// process; the connection pool is pinned to one connection, matching the
// embedded-database usage.
type Cache struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	location   TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	row_count  INTEGER NOT NULL,
	csv        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_location ON snapshots(location, fetched_at);
`

// Open initializes the snapshot cache at the given path, creating the
// parent directory and schema as needed.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores a snapshot.
func (c *Cache) Put(ctx context.Context, s Snapshot) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, location, fetched_at, row_count, csv) VALUES (?, ?, ?, ?, ?)`,
		s.RunID, s.Location, s.FetchedAt.UnixMilli(), s.RowCount, s.CSV,
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently fetched snapshot for a location.
func (c *Cache) Latest(ctx context.Context, location string) (*Snapshot, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, run_id, location, fetched_at, row_count, csv
		 FROM snapshots WHERE location = ?
		 ORDER BY fetched_at DESC, id DESC LIMIT 1`, location)

	var s Snapshot
	var fetchedAt int64
	err := row.Scan(&s.ID, &s.RunID, &s.Location, &fetchedAt, &s.RowCount, &s.CSV)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	s.FetchedAt = time.UnixMilli(fetchedAt)
	return &s, nil
}

// List returns snapshot metadata for every cached download, newest first.
// The raw CSV payload is not loaded.
func (c *Cache) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, run_id, location, fetched_at, row_count
		 FROM snapshots ORDER BY fetched_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var fetchedAt int64
		if err := rows.Scan(&s.ID, &s.RunID, &s.Location, &fetchedAt, &s.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.FetchedAt = time.UnixMilli(fetchedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Clear deletes every cached snapshot and reports how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM snapshots`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared snapshots: %w", err)
	}
	return n, nil
}
