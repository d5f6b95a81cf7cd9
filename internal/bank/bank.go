// Package bank orchestrates the screens of the app: it loads state from the
// repository, applies a ledger operation, and writes the result back.
//
// Every mutation is a read-modify-write of the whole friend list. Within a
// process these are serialized by a mutex; across processes (or when a caller
// passes the version it rendered) the store's version check turns a lost
// update into ErrConflict. Version 0 is a real version, the one of a list
// never written; storage.AnyVersion is the only value that skips the check.
package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/friendshipbank/internal/ledger"
	"github.com/mmynk/friendshipbank/internal/metrics"
	"github.com/mmynk/friendshipbank/internal/models"
	"github.com/mmynk/friendshipbank/internal/storage"
)

var (
	// ErrNoUser means no display name is stored; callers send the user to
	// name entry.
	ErrNoUser = errors.New("no user name set")

	// ErrNotConfirmed means a destructive action was declined.
	ErrNotConfirmed = errors.New("action not confirmed")

	// ErrConflict means the friend list changed since the caller read it.
	ErrConflict = errors.New("friends were changed elsewhere; reload and try again")
)

// ClearPrompt is shown before all friends are removed.
const ClearPrompt = "Are you sure you want to clear all friends? This cannot be undone."

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer with a fixed answer.
type Confirmed bool

// Confirm returns the fixed answer.
func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// HomeView is the state of the friend list screen.
type HomeView struct {
	UserName string
	Friends  []models.Friend // highest balance first
	Version  int64
}

// FriendView is the state of the friend detail screen.
type FriendView struct {
	UserName string
	Friend   models.Friend
	Acts     []models.Act
	Version  int64
}

// Bank is the transport-neutral controller behind the web screens and the
// RPC API.
type Bank struct {
	repo    *storage.Repository
	ids     ledger.IDSource
	clock   ledger.Clock
	catalog *ledger.Catalog
	logger  *slog.Logger

	mu sync.Mutex
}

// Option customizes a Bank.
type Option func(*Bank)

// WithClock overrides the clock used for transaction dates.
func WithClock(c ledger.Clock) Option { return func(b *Bank) { b.clock = c } }

// WithIDs overrides the ID source.
func WithIDs(ids ledger.IDSource) Option { return func(b *Bank) { b.ids = ids } }

// WithCatalog overrides the predefined acts.
func WithCatalog(c *ledger.Catalog) Option { return func(b *Bank) { b.catalog = c } }

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option { return func(b *Bank) { b.logger = l } }

// New creates a Bank over repo.
func New(repo *storage.Repository, opts ...Option) *Bank {
	b := &Bank{
		repo:    repo,
		clock:   ledger.SystemClock{},
		catalog: ledger.MustCatalog(ledger.DefaultActs),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.ids == nil {
		b.ids = ledger.NewMonotonicIDs(b.clock)
	}
	return b
}

// Acts returns the predefined act catalog.
func (b *Bank) Acts() []models.Act {
	return b.catalog.All()
}

// Profile returns the stored display name, or "" if none.
func (b *Bank) Profile(ctx context.Context) (string, error) {
	return b.repo.UserName(ctx)
}

// EnterName stores the trimmed display name.
func (b *Bank) EnterName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ledger.ErrEmptyName
	}
	if err := b.repo.SetUserName(ctx, name); err != nil {
		return err
	}
	b.logger.Info("User name set", "name", name)
	return nil
}

// SignOut forgets the display name and all friends.
func (b *Bank) SignOut(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.repo.Clear(ctx); err != nil {
		return err
	}
	b.logger.Info("Signed out")
	return nil
}

// Home loads the friend list screen.
func (b *Bank) Home(ctx context.Context) (*HomeView, error) {
	name, err := b.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	friends, version, err := b.repo.Friends(ctx)
	if err != nil {
		return nil, err
	}
	return &HomeView{
		UserName: name,
		Friends:  ledger.SortByBalance(friends),
		Version:  version,
	}, nil
}

// Friend loads the detail screen for one friend.
func (b *Bank) Friend(ctx context.Context, friendID string) (*FriendView, error) {
	name, err := b.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	friends, version, err := b.repo.Friends(ctx)
	if err != nil {
		return nil, err
	}
	friend, ok := ledger.FindFriend(friends, friendID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrFriendNotFound, friendID)
	}
	return &FriendView{
		UserName: name,
		Friend:   friend,
		Acts:     b.catalog.All(),
		Version:  version,
	}, nil
}

// AddFriend appends a friend named name. expectedVersion is the friend-list
// version the caller last saw; storage.AnyVersion skips the staleness check.
func (b *Bank) AddFriend(ctx context.Context, name string, expectedVersion int64) (models.Friend, error) {
	var added models.Friend
	err := b.mutate(ctx, expectedVersion, func(friends []models.Friend) ([]models.Friend, error) {
		out, friend, err := ledger.AddFriend(friends, name, b.ids)
		added = friend
		return out, err
	})
	if err != nil {
		return models.Friend{}, err
	}
	metrics.FriendAdded()
	b.logger.Info("Friend added", "friend_id", added.ID, "name", added.Name)
	return added, nil
}

// ClearFriends removes every friend once confirmer agrees.
func (b *Bank) ClearFriends(ctx context.Context, confirmer Confirmer, expectedVersion int64) error {
	if _, err := b.requireUser(ctx); err != nil {
		return err
	}
	if confirmer == nil || !confirmer.Confirm(ctx, ClearPrompt) {
		return ErrNotConfirmed
	}
	err := b.mutate(ctx, expectedVersion, func([]models.Friend) ([]models.Friend, error) {
		return ledger.RemoveAllFriends(), nil
	})
	if err != nil {
		return err
	}
	metrics.FriendsCleared()
	b.logger.Info("All friends cleared")
	return nil
}

// RecordTransfer records a manual "I gave" / "I received" entry.
func (b *Bank) RecordTransfer(ctx context.Context, friendID, direction, amount, description string, expectedVersion int64) (models.Transaction, error) {
	dir, err := ledger.ParseDirection(direction)
	if err != nil {
		return models.Transaction{}, err
	}
	entry, err := ledger.Manual(dir, amount, description)
	if err != nil {
		return models.Transaction{}, err
	}
	return b.record(ctx, "transfer", friendID, entry, expectedVersion)
}

// RecordAct records a predefined act.
func (b *Bank) RecordAct(ctx context.Context, friendID, actID string, expectedVersion int64) (models.Transaction, error) {
	act, err := b.catalog.Lookup(actID)
	if err != nil {
		return models.Transaction{}, err
	}
	return b.record(ctx, "act", friendID, ledger.ActEntry(act), expectedVersion)
}

// RecordCustomAct records a free-form act with its own points.
func (b *Bank) RecordCustomAct(ctx context.Context, friendID, description, points string, expectedVersion int64) (models.Transaction, error) {
	entry, err := ledger.CustomAct(description, points)
	if err != nil {
		return models.Transaction{}, err
	}
	return b.record(ctx, "custom", friendID, entry, expectedVersion)
}

func (b *Bank) record(ctx context.Context, kind, friendID string, entry ledger.Entry, expectedVersion int64) (models.Transaction, error) {
	var txn models.Transaction
	err := b.mutate(ctx, expectedVersion, func(friends []models.Friend) ([]models.Friend, error) {
		out, t, err := ledger.ApplyTransaction(friends, friendID, entry, b.ids, b.clock)
		txn = t
		return out, err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.TransactionRecorded(kind)
	b.logger.Info("Transaction recorded",
		"kind", kind,
		"friend_id", friendID,
		"transaction_id", txn.ID,
		"amount", txn.Amount,
	)
	return txn, nil
}

// mutate runs one read-modify-write cycle. A stale expectedVersion or a
// concurrent writer yields ErrConflict; nothing is retried.
func (b *Bank) mutate(ctx context.Context, expectedVersion int64, apply func([]models.Friend) ([]models.Friend, error)) error {
	if _, err := b.requireUser(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	friends, version, err := b.repo.Friends(ctx)
	if err != nil {
		return err
	}
	if expectedVersion != storage.AnyVersion && expectedVersion != version {
		metrics.Conflict()
		return ErrConflict
	}
	if seeder, ok := b.ids.(interface{ Seed(int64) }); ok {
		seeder.Seed(ledger.MaxID(friends))
	}

	updated, err := apply(friends)
	if err != nil {
		return err
	}

	if _, err := b.repo.SaveFriends(ctx, updated, version); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			metrics.Conflict()
			b.logger.Warn("Concurrent write detected", "version", version)
			return ErrConflict
		}
		return err
	}
	return nil
}

func (b *Bank) requireUser(ctx context.Context) (string, error) {
	name, err := b.repo.UserName(ctx)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrNoUser
	}
	return name, nil
}
