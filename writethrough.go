package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// WriteThrough persists to the authoritative source synchronously before
// touching the backend. If the write callback fails, the set fails and the
// backend is left untouched - cache and store never diverge on this path.
type WriteThrough[V any] struct {
	write WriteFunc[V]
}

var _ Strategy[string] = (*WriteThrough[string])(nil)

// NewWriteThrough configures the write callback. It may be nil, in which
// case sets degrade to plain backend writes.
func NewWriteThrough[V any](write WriteFunc[V]) *WriteThrough[V] {
	return &WriteThrough[V]{write: write}
}

// Get is a plain backend passthrough. A miss filled from the per-call
// callback is written to the backend directly, never through the write
// callback - the value just came from the source.
func (s *WriteThrough[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
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

func (s *WriteThrough[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	if s.write != nil {
		if err := s.write(ctx, key, value); err != nil {
			return false, &SourceWriteError{Key: key, Err: err}
		}
	}
	return b.Set(ctx, key, value, ttl)
}

func (s *WriteThrough[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	return b.Delete(ctx, key)
}

func (s *WriteThrough[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	return b.Clear(ctx)
}
