package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/mmynk/friendshipbank/internal/storage"
	"github.com/mmynk/friendshipbank/internal/storage/storagetest"
)

// TestStore runs against a live Redis when REDIS_ADDR is set.
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := "friendshipbank-test:" + uuid.NewString() + ":"
	store, err := New(ctx, Options{Addr: addr, Prefix: prefix})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer store.Close()
	defer store.client.Del(ctx, prefix+"a", prefix+"b", prefix+"empty", prefix+"never-existed")

	storagetest.Run(t, store)
}

func TestDecode(t *testing.T) {
	if _, err := decode("k", map[string]string{}); err == nil {
		t.Error("expected not found for empty hash")
	}
	if _, err := decode("k", map[string]string{"value": "x", "version": "nope"}); err == nil {
		t.Error("expected corrupt version error")
	}
	rec, err := decode("k", map[string]string{"value": "x", "version": "3"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(rec.Value) != "x" || rec.Version != 3 {
		t.Errorf("record = %q@%d", rec.Value, rec.Version)
	}

	rec, err = decode("k", map[string]string{"value": "", "version": "4", "deleted": "1"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for deleted hash, got %v", err)
	}
	if rec.Version != 4 {
		t.Errorf("deleted version = %d, want 4", rec.Version)
	}
}
