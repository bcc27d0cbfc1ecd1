// Package catalog persists run history and album resolutions in a
// SQLite database, so repeated runs skip provider round trips for
// tracks they have already identified.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tonearm/internal/textutil"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape. Databases
// with a different version are rejected rather than silently misread.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// catalog version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one recorded engine run.
type Run struct {
	ID           string
	Command      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Processed    int
	Resolved     int
	Unresolved   int
	Duplicates   int
	MoveFailures int
	ArtAttached  int
	ArtFailures  int
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordRun persists a completed run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, command, started_at, finished_at,
            processed, resolved, unresolved, duplicates,
            move_failures, art_attached, art_failures
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Command,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Processed,
		run.Resolved,
		run.Unresolved,
		run.Duplicates,
		run.MoveFailures,
		run.ArtAttached,
		run.ArtFailures,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, started_at, finished_at,
                processed, resolved, unresolved, duplicates,
                move_failures, art_attached, art_failures
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID, &run.Command, &started, &finished,
			&run.Processed, &run.Resolved, &run.Unresolved, &run.Duplicates,
			&run.MoveFailures, &run.ArtAttached, &run.ArtFailures,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetResolution looks up a cached album resolution. Lookup failures
// report a miss; the cache is advisory.
func (s *Store) GetResolution(artist, title string) (string, bool) {
	var album string
	err := s.db.QueryRow(
		"SELECT album FROM resolutions WHERE artist_key = ? AND title_key = ?",
		textutil.NormalizeComparable(artist),
		textutil.NormalizeComparable(title),
	).Scan(&album)
	if err != nil {
		return "", false
	}
	return album, true
}

// PutResolution stores (or refreshes) an album resolution.
func (s *Store) PutResolution(artist, title, album string) error {
	_, err := s.db.Exec(
		`INSERT INTO resolutions (artist_key, title_key, album, resolved_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (artist_key, title_key) DO UPDATE SET
            album = excluded.album,
            resolved_at = excluded.resolved_at`,
		textutil.NormalizeComparable(artist),
		textutil.NormalizeComparable(title),
		album,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store resolution: %w", err)
	}
	return nil
}

// ClearResolutions drops every cached resolution.
func (s *Store) ClearResolutions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM resolutions"); err != nil {
		return fmt.Errorf("clear resolutions: %w", err)
	}
	return nil
}
