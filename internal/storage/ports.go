// Package storage holds the key-value persistence port used by the ledger
// and its SQLite implementation.
package storage

import "context"

// Keys under which the ledger persists its state.
const (
	ExpensesKey   = "@finanzapp:expenses"
	DailyLimitKey = "@finanzapp:dailyLimit"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key. found is false when the key was never set.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set replaces the value for key.
	Set(ctx context.Context, key, value string) error
	Close() error
}
