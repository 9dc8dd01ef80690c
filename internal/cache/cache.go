// Package cache defines the read-through cache used for membership listings
// and organization lookups. The service layer treats the store as advisory:
// a cache failure never fails the operation it decorates, and permission
// checks never consult it.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long cached entries stay valid before callers fall
// back to the database.
const DefaultTTL = 5 * time.Minute

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a minimal key-value cache. Values are opaque byte slices;
// callers handle serialization.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
