// Package memory provides an in-process implementation of storage.KV.
// State is lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/friendshipbank/internal/storage"
)

// Ensure Store implements storage.KV
var _ storage.KV = (*Store)(nil)

// Store is a map guarded by a mutex. Deleted keys stay in the map as
// tombstones so their version keeps counting up.
type Store struct {
	mu      sync.RWMutex
	records map[string]entry
}

type entry struct {
	storage.Record
	deleted bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string]entry)}
}

// Get returns a copy of the stored record.
func (s *Store) Get(_ context.Context, key string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[key]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	if e.deleted {
		return storage.Record{Version: e.Version}, storage.ErrNotFound
	}
	return storage.Record{Value: append([]byte(nil), e.Value...), Version: e.Version}, nil
}

// Put stores a copy of value, checking the version first.
func (s *Store) Put(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[key].Version
	if expected != storage.AnyVersion && expected != current {
		return 0, storage.ErrVersionConflict
	}

	next := current + 1
	s.records[key] = entry{Record: storage.Record{Value: append([]byte(nil), value...), Version: next}}
	return next, nil
}

// Delete replaces live keys with tombstones.
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		e, ok := s.records[k]
		if !ok || e.deleted {
			continue
		}
		s.records[k] = entry{Record: storage.Record{Version: e.Version + 1}, deleted: true}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
