// Package store provides the expiring key-value capability used for login
// throttling and wizard sessions.
package store

import (
	"context"
	"time"
)

// ExpiringStore is a key-value store where every key carries a time-to-live.
type ExpiringStore interface {
	// Get returns the value and whether the key was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// TTL returns the residual lifetime of key and whether it exists.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
	// Incr atomically increments the integer at key (absent counts as 0),
	// refreshes its lifetime to ttl and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
