package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// ReadThrough loads misses from a strategy-configured read callback when no
// per-call miss callback is supplied. Read-callback failures are wrapped in
// SourceReadError so callers can tell them apart from backend failures.
type ReadThrough[V any] struct {
	read MissFunc[V]
}

var _ Strategy[string] = (*ReadThrough[string])(nil)

// NewReadThrough configures the default read callback. It may be nil, in
// which case only per-call miss callbacks are used.
func NewReadThrough[V any](read MissFunc[V]) *ReadThrough[V] {
	return &ReadThrough[V]{read: read}
}

func (s *ReadThrough[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
	var zero V
	v, ok, err := b.Get(ctx, key)
	if err != nil || ok {
		return v, ok, err
	}
	cb := miss
	if cb == nil {
		cb = s.read
	}
	if cb == nil {
		return zero, false, nil
	}
	v, ok, err = cb(ctx, key)
	if err != nil {
		return zero, false, &SourceReadError{Key: key, Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	if _, err := b.Set(ctx, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *ReadThrough[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	return b.Set(ctx, key, value, ttl)
}

func (s *ReadThrough[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	return b.Delete(ctx, key)
}

func (s *ReadThrough[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	return b.Clear(ctx)
}
