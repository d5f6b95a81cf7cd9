package memory

import (
	"context"
	"testing"

	"github.com/mmynk/friendshipbank/internal/storage"
	"github.com/mmynk/friendshipbank/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, New())
}

func TestStore_CopiesValues(t *testing.T) {
	s := New()
	ctx := context.Background()

	value := []byte("abc")
	if _, err := s.Put(ctx, "k", value, storage.AnyVersion); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value[0] = 'x'

	rec, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(rec.Value) != "abc" {
		t.Errorf("stored value aliased caller slice: %q", rec.Value)
	}

	rec.Value[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again.Value) != "abc" {
		t.Errorf("returned value aliased stored slice: %q", again.Value)
	}
}
