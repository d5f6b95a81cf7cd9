// Package ledger implements the pure operations on a friend collection.
//
// Every operation takes the current collection and returns a new one; the
// input slice and the friends in it are never modified. Persisting the
// result is the caller's job.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mmynk/friendshipbank/internal/models"
)

var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrInvalidAmount     = errors.New("please enter a valid amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrEmptyDescription  = errors.New("description must not be empty")
	ErrUnknownDirection  = errors.New("unknown direction")
	ErrUnknownAct        = errors.New("unknown act")
	ErrFriendNotFound    = errors.New("friend not found")
)

// Entry is a validated balance adjustment ready to be applied.
type Entry struct {
	Amount      int64
	Description string
}

// AddFriend appends a new friend with a zero balance and no transactions.
// If name is blank after trimming, friends is returned unchanged along with
// ErrEmptyName.
func AddFriend(friends []models.Friend, name string, ids IDSource) ([]models.Friend, models.Friend, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return friends, models.Friend{}, ErrEmptyName
	}

	friend := models.Friend{
		ID:           ids.NextID(),
		Name:         name,
		Balance:      0,
		Transactions: []models.Transaction{},
	}

	out := make([]models.Friend, 0, len(friends)+1)
	out = append(out, friends...)
	out = append(out, friend)
	return out, friend, nil
}

// RemoveAllFriends returns an empty collection.
func RemoveAllFriends() []models.Friend {
	return []models.Friend{}
}

// ApplyTransaction records entry against the friend whose ID matches
// friendID. The new transaction is prepended to the friend's history and its
// amount added to the balance.
//
// A zero amount, or one that would push the balance past the int64 range,
// is rejected with ErrInvalidAmount. A missing friend yields
// ErrFriendNotFound. In both cases friends is returned unchanged.
func ApplyTransaction(friends []models.Friend, friendID string, entry Entry, ids IDSource, clock Clock) ([]models.Friend, models.Transaction, error) {
	if entry.Amount == 0 {
		return friends, models.Transaction{}, ErrInvalidAmount
	}

	idx := indexOf(friends, friendID)
	if idx < 0 {
		return friends, models.Transaction{}, fmt.Errorf("%w: %s", ErrFriendNotFound, friendID)
	}
	if overflows(friends[idx].Balance, entry.Amount) {
		return friends, models.Transaction{}, fmt.Errorf("%w: balance out of range", ErrInvalidAmount)
	}

	txn := models.Transaction{
		ID:          ids.NextID(),
		Amount:      entry.Amount,
		Description: entry.Description,
		Date:        models.FormatDate(clock.Now()),
	}

	updated := friends[idx]
	history := make([]models.Transaction, 0, len(updated.Transactions)+1)
	history = append(history, txn)
	history = append(history, updated.Transactions...)
	updated.Transactions = history
	updated.Balance += entry.Amount

	out := make([]models.Friend, len(friends))
	copy(out, friends)
	out[idx] = updated
	return out, txn, nil
}

// FindFriend looks up a friend by its ID in string form.
func FindFriend(friends []models.Friend, friendID string) (models.Friend, bool) {
	idx := indexOf(friends, friendID)
	if idx < 0 {
		return models.Friend{}, false
	}
	return friends[idx].Clone(), true
}

// SortByBalance returns a copy of friends ordered by balance, highest first.
// Friends with equal balances keep their stored order.
func SortByBalance(friends []models.Friend) []models.Friend {
	out := make([]models.Friend, len(friends))
	copy(out, friends)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance > out[j].Balance
	})
	return out
}

// MaxID returns the largest friend or transaction ID in the collection.
func MaxID(friends []models.Friend) int64 {
	var max int64
	for _, f := range friends {
		if f.ID > max {
			max = f.ID
		}
		for _, t := range f.Transactions {
			if t.ID > max {
				max = t.ID
			}
		}
	}
	return max
}

// overflows reports whether balance+amount falls outside int64.
func overflows(balance, amount int64) bool {
	if amount > 0 {
		return balance > math.MaxInt64-amount
	}
	return balance < math.MinInt64-amount
}

// indexOf scans for the friend whose ID formats to friendID.
func indexOf(friends []models.Friend, friendID string) int {
	friendID = strings.TrimSpace(friendID)
	for i, f := range friends {
		if strconv.FormatInt(f.ID, 10) == friendID {
			return i
		}
	}
	return -1
}
