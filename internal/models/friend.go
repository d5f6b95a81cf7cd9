package models

import "time"

// DateLayout is the ISO-8601 layout used for Transaction.Date.
// Dates are always written in UTC with millisecond precision, e.g.
// "2024-05-01T10:00:00.000Z".
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Friend represents a counterparty the user keeps a ledger with.
type Friend struct {
	// ID is the unique identifier for the friend, generated at creation.
	ID int64 `json:"id"`

	// Name is the display name entered by the user.
	Name string `json:"name"`

	// Balance is the running sum of all transaction amounts.
	// It is maintained incrementally and never recomputed.
	Balance int64 `json:"balance"`

	// Transactions is the history, newest first.
	// Always non-nil so it encodes as [] rather than null.
	Transactions []Transaction `json:"transactions"`
}

// Transaction represents one signed adjustment to a friend's balance.
type Transaction struct {
	ID          int64  `json:"id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// FormatDate renders t in the persisted Transaction.Date layout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Time parses the transaction date. Returns the zero time if the stored
// value is not a valid timestamp.
func (t Transaction) Time() time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, t.Date)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Clone returns a deep copy of the friend.
func (f Friend) Clone() Friend {
	out := f
	out.Transactions = make([]Transaction, len(f.Transactions))
	copy(out.Transactions, f.Transactions)
	return out
}
