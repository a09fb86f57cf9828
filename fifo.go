package stratacache

import (
	"context"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// FIFO bounds the backend's key set by evicting the earliest-inserted key
// still present before every admitting write. Reads never change the order.
type FIFO[V any] struct {
	maxSize int
	log     Logger
	hooks   Hooks

	mu      sync.Mutex
	order   []string
	present map[string]struct{}
}

var _ Strategy[string] = (*FIFO[string])(nil)

func NewFIFO[V any](cfg EvictionConfig) (*FIFO[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &FIFO[V]{
		maxSize: cfg.MaxSize,
		log:     cfg.logger(),
		hooks:   cfg.hook(),
		present: make(map[string]struct{}),
	}, nil
}

func (s *FIFO[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
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
	if _, err := s.Set(ctx, b, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *FIFO[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	_, tracked := s.present[key]
	if !tracked {
		s.evictIfFullLocked(ctx, b)
		s.order = append(s.order, key)
		s.present[key] = struct{}{}
	}
	s.mu.Unlock()

	applied, err := b.Set(ctx, key, value, ttl)
	if (err != nil || !applied) && !tracked {
		s.mu.Lock()
		s.removeLocked(key)
		s.mu.Unlock()
	}
	return applied, err
}

func (s *FIFO[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	removed, err := b.Delete(ctx, key)
	if err == nil && removed {
		s.mu.Lock()
		s.removeLocked(key)
		s.mu.Unlock()
	}
	return removed, err
}

func (s *FIFO[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	s.mu.Lock()
	s.order = nil
	s.present = make(map[string]struct{})
	s.mu.Unlock()
	return b.Clear(ctx)
}

// Len reports the shadow-index size.
func (s *FIFO[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.present)
}

func (s *FIFO[V]) removeLocked(key string) {
	if _, ok := s.present[key]; !ok {
		return
	}
	delete(s.present, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *FIFO[V]) evictIfFullLocked(ctx context.Context, b backend.Backend[V]) {
	if len(s.present) < s.maxSize {
		return
	}
	victim := s.order[0]
	s.order = s.order[1:]
	delete(s.present, victim)
	if _, err := b.Delete(ctx, victim); err != nil {
		s.log.Warn("fifo eviction delete failed", Fields{"key": victim, "err": err})
	}
	s.hooks.CapacityEvicted(victim, "fifo")
}
