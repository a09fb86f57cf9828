// Package backend defines the storage contract consumed by stratacache and
// the metadata substrate that concrete stores ride on.
//
// A Backend is the full capability set the strategy layer programs against.
// Concrete stores implement the smaller Raw interface (primitive load/store
// operations with no expiry semantics) and are wrapped by Tracked, which adds
// per-key metadata and lazy TTL enforcement. Stores that enforce TTLs
// natively (e.g. Redis) may honor the ttl passed to Store as well; the
// Tracked layer remains the authoritative expiry mechanism.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned by any operation on a closed backend.
	ErrClosed = errors.New("backend is closed")

	// ErrNotSupported is returned by stores that cannot provide an optional
	// capability (e.g. key enumeration on Ristretto).
	ErrNotSupported = errors.New("operation not supported by backend")
)

// Backend is the uniform storage contract. All methods must be safe for
// concurrent use. A false return from Set/Delete means "not applied", not a
// fault; store-layer faults are signaled as errors, never as a silent false.
type Backend[V any] interface {
	// Get returns (value, true, nil) on hit and (zero, false, nil) on miss.
	Get(ctx context.Context, key string) (V, bool, error)

	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)

	// Delete removes a key, reporting whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes all entries. Clearing an empty backend succeeds.
	Clear(ctx context.Context) (bool, error)

	// Keys returns a finite snapshot of keys matching pattern (glob-style,
	// "*" wildcard; empty pattern matches everything). Restartable by
	// calling again.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Size returns the number of stored entries. Lazily expired entries may
	// be counted until their next access.
	Size(ctx context.Context) (int, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Raw is the primitive store interface concrete adapters implement.
// Raw stores know nothing about metadata; expiry belongs to Tracked.
// Implementations may apply ttl natively where the store supports it and
// ignore it otherwise.
type Raw[V any] interface {
	Load(ctx context.Context, key string) (V, bool, error)
	Store(ctx context.Context, key string, value V, ttl time.Duration) error
	Remove(ctx context.Context, key string) (bool, error)
	Has(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Len(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// Error wraps a store-layer fault with the store name, operation and key.
type Error struct {
	Store string
	Op    string
	Key   string
	Err   error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s backend: %s: %v", e.Store, e.Op, e.Err)
	}
	return fmt.Sprintf("%s backend: %s %q: %v", e.Store, e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
