package ledger

import (
	"fmt"

	"github.com/mmynk/friendshipbank/internal/models"
)

// DefaultActs is the built-in catalog of one-tap acts.
var DefaultActs = []models.Act{
	{ID: "coffee", Description: "Bought me a coffee", Icon: "☕", Points: 2},
	{ID: "lunch", Description: "Treated me to lunch", Icon: "🍔", Points: 5},
	{ID: "ride", Description: "Gave me a ride", Icon: "🚗", Points: 3},
	{ID: "moving", Description: "Helped me move", Icon: "📦", Points: 10},
	{ID: "my-coffee", Description: "I bought them a coffee", Icon: "☕", Points: -2},
	{ID: "my-lunch", Description: "I treated them to lunch", Icon: "🍔", Points: -5},
	{ID: "my-ride", Description: "I gave them a ride", Icon: "🚗", Points: -3},
	{ID: "petsit", Description: "I watched their pet", Icon: "🐾", Points: -4},
}

// Catalog is an immutable set of predefined acts, kept in display order.
type Catalog struct {
	acts  []models.Act
	index map[string]int
}

// NewCatalog builds a catalog. Acts must have unique, non-empty IDs and
// non-zero points.
func NewCatalog(acts []models.Act) (*Catalog, error) {
	c := &Catalog{
		acts:  make([]models.Act, 0, len(acts)),
		index: make(map[string]int, len(acts)),
	}
	for _, act := range acts {
		if act.ID == "" {
			return nil, fmt.Errorf("act %q: id required", act.Description)
		}
		if act.Points == 0 {
			return nil, fmt.Errorf("act %q: points must not be zero", act.ID)
		}
		if _, dup := c.index[act.ID]; dup {
			return nil, fmt.Errorf("act %q: duplicate id", act.ID)
		}
		c.index[act.ID] = len(c.acts)
		c.acts = append(c.acts, act)
	}
	return c, nil
}

// MustCatalog is NewCatalog for static data; it panics on invalid input.
func MustCatalog(acts []models.Act) *Catalog {
	c, err := NewCatalog(acts)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the acts in display order.
func (c *Catalog) All() []models.Act {
	out := make([]models.Act, len(c.acts))
	copy(out, c.acts)
	return out
}

// Lookup finds an act by ID.
func (c *Catalog) Lookup(id string) (models.Act, error) {
	i, ok := c.index[id]
	if !ok {
		return models.Act{}, fmt.Errorf("%w: %q", ErrUnknownAct, id)
	}
	return c.acts[i], nil
}

// ActEntry turns a predefined act into an entry. The act's points are used
// as-is, without the positivity check applied to manual transfers.
func ActEntry(act models.Act) Entry {
	return Entry{Amount: act.Points, Description: act.Description}
}
