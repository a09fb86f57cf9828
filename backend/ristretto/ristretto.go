// Package ristretto adapts dgraph-io/ristretto to the raw store contract.
//
// Ristretto cannot enumerate its keys or report an exact entry count, so
// Keys and Len return backend.ErrNotSupported; use a different store when a
// strategy or caller needs those capabilities.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/tidegate/stratacache/backend"
)

type Store[V any] struct {
	c *rc.Cache
}

var _ backend.Raw[string] = (*Store[string])(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New[V any](cfg Config) (*Store[V], error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto store: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store[V]{c: c}, nil
}

func (s *Store[V]) Load(_ context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok := s.c.Get(key)
	if !ok {
		return zero, false, nil
	}
	v, ok := raw.(V)
	if !ok {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) Store(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl > 0 {
		s.c.SetWithTTL(key, value, 1, ttl)
	} else {
		s.c.Set(key, value, 1)
	}
	s.c.Wait() // make the write visible to subsequent loads
	return nil
}

func (s *Store[V]) Remove(_ context.Context, key string) (bool, error) {
	_, ok := s.c.Get(key)
	s.c.Del(key)
	return ok, nil
}

func (s *Store[V]) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.c.Get(key)
	return ok, nil
}

func (s *Store[V]) Reset(_ context.Context) error {
	s.c.Clear()
	return nil
}

func (s *Store[V]) Keys(_ context.Context, _ string) ([]string, error) {
	return nil, backend.ErrNotSupported
}

func (s *Store[V]) Len(_ context.Context) (int, error) {
	return 0, backend.ErrNotSupported
}

func (s *Store[V]) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's own metrics when enabled in Config.
func (s *Store[V]) Metrics() *rc.Metrics { return s.c.Metrics }
