package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// Cache is the public surface application code talks to. All operations on
// one instance are serialized behind a single lock; a slow callback invoked
// inside an operation stalls the others for its duration (an accepted
// latency/simplicity tradeoff).
type Cache[V any] interface {
	// Get returns the cached value for key. On a miss the optional miss
	// callback may load it, subject to the strategy's policy.
	Get(ctx context.Context, key string, miss MissFunc[V]) (V, bool, error)

	// Set stores value under key. ttl 0 falls back to the manager's default
	// TTL, if configured.
	Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) (bool, error)

	// Keys returns backend keys matching the glob pattern. The pattern is
	// matched against full (namespaced) keys, so callers filtering within a
	// namespace should include it in the pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	Size(ctx context.Context) (int, error)

	// Close flushes any pending deferred writes and releases the backend.
	Close(ctx context.Context) error
}

// Options configure a cache manager. Only Backend is required.
type Options[V any] struct {
	// Required
	Backend backend.Backend[V]

	Strategy   Strategy[V]   // nil => CacheAside
	Namespace  string        // "" => "default"
	KeyPrefix  string        // optional per-manager key segment
	DefaultTTL time.Duration // fallback expiry applied when Set omits ttl
	Logger     Logger        // nil => NopLogger
}

// New composes one backend with one strategy under the namespacing and
// locking discipline described in the package docs.
func New[V any](opts Options[V]) (Cache[V], error) {
	return newManager[V](opts)
}
