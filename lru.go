package stratacache

import (
	"context"
	"sync"
	"time"

	hlru "github.com/hashicorp/golang-lru/v2"

	"github.com/tidegate/stratacache/backend"
)

// LRU bounds the backend's key set by evicting the least-recently-touched
// key before every admitting write. The shadow index is a recency list
// (hashicorp/golang-lru); its key set is always a subset of the backend's.
//
// The strategy guards the index with its own lock so it stays correct
// without a manager. Callers holding the manager lock always take it first.
type LRU[V any] struct {
	maxSize int
	log     Logger
	hooks   Hooks

	mu    sync.Mutex
	index *hlru.Cache[string, struct{}]
}

var _ Strategy[string] = (*LRU[string])(nil)

func NewLRU[V any](cfg EvictionConfig) (*LRU[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// auto-eviction never fires: admission always makes room first
	index, err := hlru.New[string, struct{}](cfg.MaxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[V]{maxSize: cfg.MaxSize, log: cfg.logger(), hooks: cfg.hook(), index: index}, nil
}

func (s *LRU[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
	var zero V
	v, ok, err := b.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		s.mu.Lock()
		if _, tracked := s.index.Get(key); !tracked {
			// key landed in the backend outside this strategy; admit it so
			// the bound and the subset invariant hold on every path
			s.evictIfFullLocked(ctx, b)
			s.index.Add(key, struct{}{})
		}
		s.mu.Unlock()
		return v, true, nil
	}
	if miss == nil {
		return zero, false, nil
	}
	v, ok, err = miss(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	// admit through Set so the new key participates in eviction bookkeeping
	if _, err := s.Set(ctx, b, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *LRU[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	admitted := !s.index.Contains(key)
	if admitted {
		s.evictIfFullLocked(ctx, b)
	}
	s.index.Add(key, struct{}{})
	s.mu.Unlock()

	applied, err := b.Set(ctx, key, value, ttl)
	if err != nil || !applied {
		if admitted {
			// keep the index a subset of the backend's key set
			s.mu.Lock()
			s.index.Remove(key)
			s.mu.Unlock()
		}
	}
	return applied, err
}

func (s *LRU[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	removed, err := b.Delete(ctx, key)
	if err == nil && removed {
		s.mu.Lock()
		s.index.Remove(key)
		s.mu.Unlock()
	}
	return removed, err
}

func (s *LRU[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	s.mu.Lock()
	s.index.Purge()
	s.mu.Unlock()
	return b.Clear(ctx)
}

// Len reports the shadow-index size.
func (s *LRU[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Len()
}

// evictIfFullLocked removes the least-recently-used key from both the index
// and the backend when the index is at capacity. Capacity eviction is never
// an error; a failed backend delete is logged and skipped.
func (s *LRU[V]) evictIfFullLocked(ctx context.Context, b backend.Backend[V]) {
	if s.index.Len() < s.maxSize {
		return
	}
	victim, _, ok := s.index.GetOldest()
	if !ok {
		return
	}
	s.index.Remove(victim)
	if _, err := b.Delete(ctx, victim); err != nil {
		s.log.Warn("lru eviction delete failed", Fields{"key": victim, "err": err})
	}
	s.hooks.CapacityEvicted(victim, "lru")
}
