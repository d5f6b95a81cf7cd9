package ledger

import (
	"sync"
	"time"
)

// Clock supplies the current time for transaction dates and IDs.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// IDSource generates unique integer IDs for friends and transactions.
type IDSource interface {
	NextID() int64
}

// MonotonicIDs generates IDs from the clock's Unix milliseconds, bumping the
// value when two IDs would otherwise collide within the same millisecond or
// the clock steps backwards. Safe for concurrent use.
type MonotonicIDs struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewMonotonicIDs creates an ID source driven by clock.
// A nil clock uses SystemClock.
func NewMonotonicIDs(clock Clock) *MonotonicIDs {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MonotonicIDs{clock: clock}
}

// NextID returns an ID strictly greater than every ID previously returned.
func (m *MonotonicIDs) NextID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.clock.Now().UnixMilli()
	if id <= m.last {
		id = m.last + 1
	}
	m.last = id
	return id
}

// Seed makes later IDs greater than id. Used to resume after loading data
// written by a previous process whose clock may have been ahead.
func (m *MonotonicIDs) Seed(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id > m.last {
		m.last = id
	}
}
