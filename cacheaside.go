package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// CacheAside is the lazy-loading strategy: the application owns population.
// On a miss the per-call miss callback (if any) loads the value, which is
// then written into the backend for future reads. Sets pass through
// unchanged; no authoritative-source write path exists here.
type CacheAside[V any] struct{}

var _ Strategy[string] = CacheAside[string]{}

func NewCacheAside[V any]() CacheAside[V] { return CacheAside[V]{} }

func (CacheAside[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
	var zero V
	v, ok, err := b.Get(ctx, key)
	if err != nil || ok {
		return v, ok, err
	}
	if miss == nil {
		return zero, false, nil
	}
	v, ok, err = miss(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if _, err := b.Set(ctx, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (CacheAside[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	return b.Set(ctx, key, value, ttl)
}

func (CacheAside[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	return b.Delete(ctx, key)
}

func (CacheAside[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	return b.Clear(ctx)
}
