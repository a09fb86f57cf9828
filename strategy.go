package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// MissFunc loads a value from the authoritative source on a cache miss.
// Returning ok=false means the source has no value for the key.
type MissFunc[V any] func(ctx context.Context, key string) (V, bool, error)

// WriteFunc persists a value to the authoritative source. An error means the
// durability write failed.
type WriteFunc[V any] func(ctx context.Context, key string, value V) error

// RefreshFunc recomputes a fresh value for a key. Per-key errors are caught
// by the refresh worker and skipped, never escalated.
type RefreshFunc[V any] func(ctx context.Context, key string) (V, error)

// Strategy is a policy deciding how reads and writes route between the
// backend and an authoritative source. Strategies receive the backend on
// every call rather than owning it; eviction strategies additionally own
// process-local shadow-index state that survives across calls on the same
// instance.
type Strategy[V any] interface {
	Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error)
	Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error)
	Clear(ctx context.Context, b backend.Backend[V]) (bool, error)
}

// Flusher is implemented by strategies holding deferred writes that can be
// drained explicitly (e.g. at shutdown). The manager flushes on Close.
type Flusher interface {
	Flush(ctx context.Context) error
}
