// Package sqlite provides a SQLite-backed implementation of the storage.KV interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/friendshipbank/internal/storage"
)

// Ensure SQLiteStore implements storage.KV
var _ storage.KV = (*SQLiteStore)(nil)

// SQLiteStore implements storage.KV using a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Writers take the lock at BEGIN so two processes sharing the file queue
	// on busy_timeout instead of failing when a read lock is upgraded.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection keeps writes serialized
	// within the process.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves the value and version for key. A deleted row reports
// ErrNotFound with its version.
func (s *SQLiteStore) Get(ctx context.Context, key string) (storage.Record, error) {
	var (
		rec     storage.Record
		deleted bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version, deleted FROM kv WHERE key = ?",
		key,
	).Scan(&rec.Value, &rec.Version, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to get %q: %w", key, err)
	}
	if deleted {
		return storage.Record{Version: rec.Version}, storage.ErrNotFound
	}
	return rec, nil
}

// Put writes value under key inside a transaction that checks the version.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, "SELECT version FROM kv WHERE key = ?", key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read version of %q: %w", key, err)
	}

	if expected != storage.AnyVersion && expected != current {
		return 0, storage.ErrVersionConflict
	}

	next := current + 1
	if value == nil {
		value = []byte{}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, version, deleted, updated_at) VALUES (?, ?, ?, 0, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = excluded.version,
		   deleted = 0, updated_at = excluded.updated_at`,
		key, value, next, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to write %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, nil
}

// Delete turns live rows into tombstones in one transaction. The row is
// kept so the next write continues from its version.
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, key := range keys {
		_, err := tx.ExecContext(ctx,
			`UPDATE kv SET value = X'', version = version + 1, deleted = 1, updated_at = ?
			 WHERE key = ? AND deleted = 0`,
			now, key,
		)
		if err != nil {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
