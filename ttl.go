package stratacache

import (
	"context"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// TTL guarantees a usable ttl reaches the backend; actual enforcement is the
// metadata substrate's job. A set without a per-call ttl falls back to the
// configured default; if neither resolves to a positive duration the set
// fails with ErrTTLRequired. Validation happens at call time because the
// default may be absent by design.
type TTL[V any] struct {
	defaultTTL time.Duration
}

var _ Strategy[string] = TTL[string]{}

func NewTTL[V any](defaultTTL time.Duration) TTL[V] {
	return TTL[V]{defaultTTL: defaultTTL}
}

func (s TTL[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
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
	// miss fill goes through Set so the ttl requirement still applies
	if _, err := s.Set(ctx, b, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s TTL[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	effective := ttl
	if effective == 0 {
		effective = s.defaultTTL
	}
	if effective <= 0 {
		return false, ErrTTLRequired
	}
	return b.Set(ctx, key, value, effective)
}

func (s TTL[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	return b.Delete(ctx, key)
}

func (s TTL[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	return b.Clear(ctx)
}
