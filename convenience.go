package stratacache

import (
	"context"
	"time"
)

// GetOrSet returns the cached value for key, or stores and returns def when
// the key is absent.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, def V, ttl time.Duration) (V, error) {
	v, ok, err := c.Get(ctx, key, nil)
	if err != nil {
		var zero V
		return zero, err
	}
	if ok {
		return v, nil
	}
	if _, err := c.Set(ctx, key, def, ttl); err != nil {
		var zero V
		return zero, err
	}
	return def, nil
}

// GetOrCompute returns the cached value for key, computing and caching it
// through the strategy's miss path when absent.
func GetOrCompute[V any](ctx context.Context, c Cache[V], key string, compute MissFunc[V], ttl time.Duration) (V, bool, error) {
	v, ok, err := c.Get(ctx, key, compute)
	if err != nil || ok {
		return v, ok, err
	}
	// strategy declined to fill (e.g. no miss path); compute directly
	v, ok, err = compute(ctx, key)
	if err != nil || !ok {
		var zero V
		return zero, false, err
	}
	if _, err := c.Set(ctx, key, v, ttl); err != nil {
		var zero V
		return zero, false, err
	}
	return v, true, nil
}

// SetMany stores every pair in items, returning how many sets were applied.
// The first backend error aborts the walk.
func SetMany[V any](ctx context.Context, c Cache[V], items map[string]V, ttl time.Duration) (int, error) {
	n := 0
	for k, v := range items {
		applied, err := c.Set(ctx, k, v, ttl)
		if err != nil {
			return n, err
		}
		if applied {
			n++
		}
	}
	return n, nil
}

// GetMany returns the present values for keys; absent keys are simply
// omitted from the result.
func GetMany[V any](ctx context.Context, c Cache[V], keys []string) (map[string]V, error) {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		v, ok, err := c.Get(ctx, k, nil)
		if err != nil {
			return out, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// DeleteMany removes keys, returning how many were present.
func DeleteMany[V any](ctx context.Context, c Cache[V], keys []string) (int, error) {
	n := 0
	for _, k := range keys {
		removed, err := c.Delete(ctx, k)
		if err != nil {
			return n, err
		}
		if removed {
			n++
		}
	}
	return n, nil
}
