// Package storagetest holds behavior tests shared by every storage.KV backend.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mmynk/friendshipbank/internal/storage"
)

// Run exercises kv against the storage.KV contract. The store should be
// empty when passed in.
func Run(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get missing key returns ErrNotFound", func(t *testing.T) {
		_, err := kv.Get(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Put then Get round trips value and version", func(t *testing.T) {
		v, err := kv.Put(ctx, "a", []byte(`[{"id":1}]`), storage.AnyVersion)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if v != 1 {
			t.Errorf("version = %d, want 1", v)
		}

		rec, err := kv.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(rec.Value, []byte(`[{"id":1}]`)) {
			t.Errorf("value = %q", rec.Value)
		}
		if rec.Version != 1 {
			t.Errorf("version = %d, want 1", rec.Version)
		}
	})

	t.Run("Put with matching version increments", func(t *testing.T) {
		v, err := kv.Put(ctx, "a", []byte("second"), 1)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if v != 2 {
			t.Errorf("version = %d, want 2", v)
		}
	})

	t.Run("Put with stale version conflicts and keeps value", func(t *testing.T) {
		_, err := kv.Put(ctx, "a", []byte("stale"), 1)
		if !errors.Is(err, storage.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
		rec, err := kv.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(rec.Value) != "second" || rec.Version != 2 {
			t.Errorf("record = %q@%d, want second@2", rec.Value, rec.Version)
		}
	})

	t.Run("Put expecting absence conflicts on existing key", func(t *testing.T) {
		if _, err := kv.Put(ctx, "a", []byte("new"), 0); !errors.Is(err, storage.ErrVersionConflict) {
			t.Errorf("expected ErrVersionConflict, got %v", err)
		}
		v, err := kv.Put(ctx, "b", []byte("new"), 0)
		if err != nil {
			t.Fatalf("Put on absent key failed: %v", err)
		}
		if v != 1 {
			t.Errorf("version = %d, want 1", v)
		}
	})

	t.Run("Delete removes keys and ignores missing ones", func(t *testing.T) {
		if err := kv.Delete(ctx, "a", "b", "never-existed"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		for _, k := range []string{"a", "b"} {
			if _, err := kv.Get(ctx, k); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("%s: expected ErrNotFound after delete, got %v", k, err)
			}
		}
	})

	t.Run("Deleted key keeps counting its version", func(t *testing.T) {
		// "a" was at version 2 before the delete.
		rec, err := kv.Get(ctx, "a")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if rec.Version != 3 {
			t.Errorf("deleted version = %d, want 3", rec.Version)
		}

		for _, stale := range []int64{0, 2} {
			if _, err := kv.Put(ctx, "a", []byte("stale"), stale); !errors.Is(err, storage.ErrVersionConflict) {
				t.Errorf("Put expecting %d: expected ErrVersionConflict, got %v", stale, err)
			}
		}
		v, err := kv.Put(ctx, "a", []byte("again"), 3)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if v != 4 {
			t.Errorf("version = %d, want 4", v)
		}
		rec, err = kv.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(rec.Value) != "again" || rec.Version != 4 {
			t.Errorf("record = %q@%d, want again@4", rec.Value, rec.Version)
		}
	})

	t.Run("Deleting twice bumps the version once", func(t *testing.T) {
		if err := kv.Delete(ctx, "b"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		rec, err := kv.Get(ctx, "b")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if rec.Version != 2 {
			t.Errorf("version = %d, want 2", rec.Version)
		}
	})

	t.Run("Deleting a missing key leaves it unwritten", func(t *testing.T) {
		rec, err := kv.Get(ctx, "never-existed")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if rec.Version != 0 {
			t.Errorf("version = %d, want 0", rec.Version)
		}
		if v, err := kv.Put(ctx, "never-existed", []byte("x"), 0); err != nil || v != 1 {
			t.Errorf("Put expecting 0 = %d, %v; want 1", v, err)
		}
	})

	t.Run("Empty value is stored", func(t *testing.T) {
		if _, err := kv.Put(ctx, "empty", []byte{}, storage.AnyVersion); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		rec, err := kv.Get(ctx, "empty")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(rec.Value) != 0 {
			t.Errorf("value = %q, want empty", rec.Value)
		}
	})
}
