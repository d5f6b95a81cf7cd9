// Package models defines the core domain models for Friendship Bank.
//
// # Models
//
//   - Friend: a counterparty with a running balance and its transaction history
//   - Transaction: a single signed balance adjustment
//   - Act: a predefined one-tap transaction shortcut
//
// There is exactly one user, identified only by a display name string, so no
// User model exists.
//
// # Persisted Layout
//
// Friends are stored as a single JSON array under the "friends" key. The JSON
// field names on Friend and Transaction are the persisted format and must not
// change without a migration.
//
// # Design Principles
//
//  1. Balances are signed integers. Positive means the friend gave more than
//     they received from the user.
//  2. Transactions are immutable and kept newest first.
//  3. IDs are integers generated at creation time and never reused.
package models
