// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by KV.Get when the key has no value.
	ErrNotFound = errors.New("key not found")

	// ErrVersionConflict is returned by KV.Put when the stored version does
	// not match the expected one.
	ErrVersionConflict = errors.New("version conflict")

	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// AnyVersion disables the version check on KV.Put.
const AnyVersion int64 = -1

// Record is a stored value together with its version.
// Versions start at 1 on the first write and increase by one on every write
// or delete, for the whole lifetime of the key. Version 0 means the key was
// never written.
type Record struct {
	Value   []byte
	Version int64
}

// KV defines the interface for the versioned key-value store that holds all
// application state.
// This abstraction allows swapping storage backends (SQLite, Redis, memory)
// without changing the layers above.
type KV interface {
	// Get returns the value and version stored under key.
	// Returns ErrNotFound if the key is absent. The record returned with it
	// still carries the key's version: 0 if it was never written, otherwise
	// the version its delete produced.
	Get(ctx context.Context, key string) (Record, error)

	// Put stores value under key and returns the new version.
	// If expected is not AnyVersion, the write only succeeds when the current
	// version equals expected; otherwise ErrVersionConflict is returned and
	// nothing is written. A deleted key keeps its version, so a writer that
	// read the key before the delete still conflicts.
	Put(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// Delete removes the given keys, bumping the version of each one that
	// held a value. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the store.
	Close() error
}
