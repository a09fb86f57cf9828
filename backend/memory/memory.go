// Package memory implements the in-process map-backed raw store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
	"github.com/tidegate/stratacache/internal/util"
)

// Store keeps values in a plain map guarded by an RWMutex. TTLs passed to
// Store are ignored; expiry is owned by the Tracked wrapper.
type Store[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

var _ backend.Raw[string] = (*Store[string])(nil)

func New[V any]() *Store[V] {
	return &Store[V]{m: make(map[string]V)}
}

// NewBackend is a convenience that wraps a fresh Store with the metadata
// substrate, yielding a ready-to-use Backend.
func NewBackend[V any]() *backend.Tracked[V] {
	return backend.NewTracked[V](New[V]())
}

func (s *Store[V]) Load(_ context.Context, key string) (V, bool, error) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok, nil
}

func (s *Store[V]) Store(_ context.Context, key string, value V, _ time.Duration) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Store[V]) Remove(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.m[key]
	delete(s.m, key)
	s.mu.Unlock()
	return ok, nil
}

func (s *Store[V]) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.m[key]
	s.mu.RUnlock()
	return ok, nil
}

func (s *Store[V]) Reset(_ context.Context) error {
	s.mu.Lock()
	s.m = make(map[string]V)
	s.mu.Unlock()
	return nil
}

func (s *Store[V]) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		ok, err := util.MatchKey(pattern, k)
		if err != nil {
			return nil, &backend.Error{Store: "memory", Op: "keys", Err: err}
		}
		if ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store[V]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m), nil
}

func (s *Store[V]) Close(_ context.Context) error { return nil }
