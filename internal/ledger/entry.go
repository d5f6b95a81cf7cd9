package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Direction is the side of a manual transfer.
type Direction string

const (
	// Gave means the user gave to the friend; the balance goes down.
	Gave Direction = "gave"
	// Received means the user received from the friend; the balance goes up.
	Received Direction = "received"
)

// ParseDirection accepts "gave" or "received", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Gave:
		return Gave, nil
	case Received:
		return Received, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// DefaultDescription is used when a manual transfer has no description.
func (d Direction) DefaultDescription() string {
	if d == Received {
		return "Money received"
	}
	return "Money given"
}

// Manual validates a manually entered transfer. The amount must be a
// positive whole number; its sign comes from the direction.
func Manual(dir Direction, rawAmount, description string) (Entry, error) {
	if dir != Gave && dir != Received {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return Entry{}, err
	}
	if amount <= 0 {
		return Entry{}, ErrNonPositiveAmount
	}
	if dir == Gave {
		amount = -amount
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = dir.DefaultDescription()
	}
	return Entry{Amount: amount, Description: description}, nil
}

// CustomAct validates a free-form act. Points may carry either sign, but the
// description is required.
func CustomAct(description, rawPoints string) (Entry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Entry{}, ErrEmptyDescription
	}
	points, err := ParseAmount(rawPoints)
	if err != nil {
		return Entry{}, err
	}
	if points == 0 {
		return Entry{}, ErrInvalidAmount
	}
	return Entry{Amount: points, Description: description}, nil
}

// ParseAmount parses a user-entered number. Blank, non-numeric, non-finite
// and fractional values are rejected with ErrInvalidAmount. Whole numbers
// written with a decimal point ("5.0") are accepted.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidAmount
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, ErrInvalidAmount
	}
	return int64(f), nil
}
