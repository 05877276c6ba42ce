package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so that a retried
// write carrying the same key is rejected instead of applied twice.
type IdempotencyStore interface {
	// Claim records key for ttl. It returns false when the key was already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so a failed request can be retried with it.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a request key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
