package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/friendshipbank/internal/models"
)

// Keys of the two records that make up the application state.
const (
	KeyUserName = "userName"
	KeyFriends  = "friends"
)

// Repository provides typed access to the user name and friend list records.
type Repository struct {
	kv KV
}

// NewRepository wraps a KV store.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// UserName returns the stored display name, or "" if none is set.
func (r *Repository) UserName(ctx context.Context) (string, error) {
	rec, err := r.kv.Get(ctx, KeyUserName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user name: %w", err)
	}
	return string(rec.Value), nil
}

// SetUserName stores the display name unconditionally.
func (r *Repository) SetUserName(ctx context.Context, name string) error {
	if _, err := r.kv.Put(ctx, KeyUserName, []byte(name), AnyVersion); err != nil {
		return fmt.Errorf("failed to set user name: %w", err)
	}
	return nil
}

// Friends loads the friend list and its version. A missing record yields an
// empty list at the version the store reports for it: 0 if never written,
// or the version left behind by Clear.
func (r *Repository) Friends(ctx context.Context) ([]models.Friend, int64, error) {
	rec, err := r.kv.Get(ctx, KeyFriends)
	if errors.Is(err, ErrNotFound) {
		return []models.Friend{}, rec.Version, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get friends: %w", err)
	}

	friends, err := DecodeFriends(rec.Value)
	if err != nil {
		return nil, 0, err
	}
	return friends, rec.Version, nil
}

// SaveFriends writes the full friend list. expected is passed through to
// KV.Put, so AnyVersion overwrites and any other value is a compare-and-set.
func (r *Repository) SaveFriends(ctx context.Context, friends []models.Friend, expected int64) (int64, error) {
	data, err := EncodeFriends(friends)
	if err != nil {
		return 0, err
	}
	version, err := r.kv.Put(ctx, KeyFriends, data, expected)
	if err != nil {
		return 0, fmt.Errorf("failed to save friends: %w", err)
	}
	return version, nil
}

// Clear removes both records.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyUserName, KeyFriends); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

// EncodeFriends serializes a friend list in the persisted JSON layout.
// A nil list encodes as [] and nil transaction histories as [].
func EncodeFriends(friends []models.Friend) ([]byte, error) {
	if friends == nil {
		friends = []models.Friend{}
	}
	for i := range friends {
		if friends[i].Transactions == nil {
			friends = normalize(friends)
			break
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(friends); err != nil {
		return nil, fmt.Errorf("failed to encode friends: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeFriends parses the persisted JSON layout.
func DecodeFriends(data []byte) ([]models.Friend, error) {
	var friends []models.Friend
	if err := json.Unmarshal(data, &friends); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return normalize(friends), nil
}

// normalize returns a copy with nil slices replaced by empty ones.
func normalize(friends []models.Friend) []models.Friend {
	out := make([]models.Friend, len(friends))
	for i, f := range friends {
		if f.Transactions == nil {
			f.Transactions = []models.Transaction{}
		}
		out[i] = f
	}
	return out
}
