package ledger

import (
	"errors"
	"testing"
)

func TestManual(t *testing.T) {
	tests := []struct {
		name        string
		dir         Direction
		amount      string
		description string
		want        Entry
		wantErr     error
	}{
		{name: "received keeps sign", dir: Received, amount: "5", description: "coffee", want: Entry{Amount: 5, Description: "coffee"}},
		{name: "gave negates", dir: Gave, amount: "12", description: "taxi", want: Entry{Amount: -12, Description: "taxi"}},
		{name: "received default description", dir: Received, amount: "3", want: Entry{Amount: 3, Description: "Money received"}},
		{name: "gave default description", dir: Gave, amount: "3", description: "   ", want: Entry{Amount: -3, Description: "Money given"}},
		{name: "whole decimal accepted", dir: Received, amount: "4.0", want: Entry{Amount: 4, Description: "Money received"}},
		{name: "blank amount", dir: Gave, amount: " ", wantErr: ErrInvalidAmount},
		{name: "non-numeric amount", dir: Gave, amount: "ten", wantErr: ErrInvalidAmount},
		{name: "fractional amount", dir: Gave, amount: "2.5", wantErr: ErrInvalidAmount},
		{name: "infinite amount", dir: Gave, amount: "Inf", wantErr: ErrInvalidAmount},
		{name: "NaN amount", dir: Gave, amount: "NaN", wantErr: ErrInvalidAmount},
		{name: "zero amount", dir: Received, amount: "0", wantErr: ErrNonPositiveAmount},
		{name: "negative amount", dir: Received, amount: "-4", wantErr: ErrNonPositiveAmount},
		{name: "unknown direction", dir: Direction("lent"), amount: "4", wantErr: ErrUnknownDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Manual(tt.dir, tt.amount, tt.description)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Manual() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != tt.want {
				t.Errorf("Manual() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"gave", "GAVE", " gave "} {
		if d, err := ParseDirection(in); err != nil || d != Gave {
			t.Errorf("ParseDirection(%q) = %q, %v", in, d, err)
		}
	}
	if d, err := ParseDirection("received"); err != nil || d != Received {
		t.Errorf("ParseDirection(received) = %q, %v", d, err)
	}
	if _, err := ParseDirection("borrowed"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
}

func TestCustomAct(t *testing.T) {
	tests := []struct {
		name        string
		description string
		points      string
		want        Entry
		wantErr     error
	}{
		{name: "positive points", description: "Fixed my bike", points: "6", want: Entry{Amount: 6, Description: "Fixed my bike"}},
		{name: "negative points bypass positivity", description: "Walked their dog", points: "-2", want: Entry{Amount: -2, Description: "Walked their dog"}},
		{name: "missing description", description: " ", points: "2", wantErr: ErrEmptyDescription},
		{name: "zero points", description: "Nothing", points: "0", wantErr: ErrInvalidAmount},
		{name: "bad points", description: "Something", points: "lots", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CustomAct(tt.description, tt.points)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CustomAct() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != tt.want {
				t.Errorf("CustomAct() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	c := MustCatalog(DefaultActs)

	if len(c.All()) != len(DefaultActs) {
		t.Fatalf("All() = %d acts, want %d", len(c.All()), len(DefaultActs))
	}

	act, err := c.Lookup("my-lunch")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	entry := ActEntry(act)
	if entry.Amount != -5 {
		t.Errorf("entry amount = %d, want -5", entry.Amount)
	}

	if _, err := c.Lookup("nope"); !errors.Is(err, ErrUnknownAct) {
		t.Errorf("expected ErrUnknownAct, got %v", err)
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	if _, err := NewCatalog(append(DefaultActs[:1:1], DefaultActs[0])); err == nil {
		t.Error("expected duplicate id error")
	}
	bad := DefaultActs[0]
	bad.Points = 0
	if _, err := NewCatalog(append(DefaultActs[:0:0], bad)); err == nil {
		t.Error("expected zero points error")
	}
	bad = DefaultActs[0]
	bad.ID = ""
	if _, err := NewCatalog(append(DefaultActs[:0:0], bad)); err == nil {
		t.Error("expected missing id error")
	}
}
