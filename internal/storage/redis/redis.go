// Package redis provides a Redis-backed implementation of the storage.KV interface.
//
// Each key is a hash with the fields "value", "version" and "deleted".
// Versioned writes use WATCH/MULTI so a concurrent writer aborts the
// transaction. Delete leaves the hash behind with deleted=1 so the version
// keeps counting up.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/go-redis/redis/v8"

	"github.com/mmynk/friendshipbank/internal/storage"
)

// Ensure Store implements storage.KV
var _ storage.KV = (*Store)(nil)

const (
	fieldValue   = "value"
	fieldVersion = "version"
	fieldDeleted = "deleted"

	maxDeleteAttempts = 5
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "friendshipbank:".
	Prefix string
}

// Store implements storage.KV on top of a Redis client.
type Store struct {
	client *goredis.Client
	prefix string
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &Store{client: client, prefix: opts.Prefix}, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get reads the value and version hash fields.
func (s *Store) Get(ctx context.Context, key string) (storage.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return decode(key, fields)
}

// Put writes the hash inside a WATCH transaction.
func (s *Store) Put(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	k := s.key(key)
	var next int64

	txf := func(tx *goredis.Tx) error {
		current, err := currentVersion(ctx, tx, k)
		if err != nil {
			return err
		}
		if expected != storage.AnyVersion && expected != current {
			return storage.ErrVersionConflict
		}

		next = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, next, fieldDeleted, 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, k)
	if errors.Is(err, goredis.TxFailedErr) {
		return 0, storage.ErrVersionConflict
	}
	if errors.Is(err, storage.ErrVersionConflict) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write %q: %w", key, err)
	}
	return next, nil
}

// Delete marks live keys deleted in one WATCH transaction.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}

	txf := func(tx *goredis.Tx) error {
		live := make(map[string]int64, len(full))
		for _, k := range full {
			fields, err := tx.HGetAll(ctx, k).Result()
			if err != nil {
				return err
			}
			if len(fields) == 0 || fields[fieldDeleted] == "1" {
				continue
			}
			v, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: version of %q: %v", storage.ErrCorrupt, k, err)
			}
			live[k] = v
		}
		if len(live) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			for k, v := range live {
				pipe.HSet(ctx, k, fieldValue, "", fieldVersion, v+1, fieldDeleted, 1)
			}
			return nil
		})
		return err
	}

	// A concurrent write to one of the keys aborts the transaction; retry
	// so the delete still lands on the newer version.
	var err error
	for attempt := 0; attempt < maxDeleteAttempts; attempt++ {
		err = s.client.Watch(ctx, txf, full...)
		if !errors.Is(err, goredis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func currentVersion(ctx context.Context, tx *goredis.Tx, key string) (int64, error) {
	raw, err := tx.HGet(ctx, key, fieldVersion).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: version of %q: %v", storage.ErrCorrupt, key, err)
	}
	return v, nil
}

func decode(key string, fields map[string]string) (storage.Record, error) {
	if len(fields) == 0 {
		return storage.Record{}, storage.ErrNotFound
	}
	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return storage.Record{}, fmt.Errorf("%w: version of %q: %v", storage.ErrCorrupt, key, err)
	}
	if fields[fieldDeleted] == "1" {
		return storage.Record{Version: version}, storage.ErrNotFound
	}
	return storage.Record{Value: []byte(fields[fieldValue]), Version: version}, nil
}
