package models

// Act is a predefined transaction shortcut offered on the friend screen.
// Points may be negative (the user did the favor) or positive (the friend
// did).
type Act struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int64  `json:"points"`
}
