package stratacache

import (
	"context"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
)

// LFU bounds the backend's key set by evicting the key with the minimum
// access count before every admitting write. Ties among equal-minimum keys
// break deterministically toward the lowest insertion sequence.
type LFU[V any] struct {
	maxSize int
	log     Logger
	hooks   Hooks

	mu      sync.Mutex
	counts  map[string]*lfuEntry
	nextSeq uint64
}

type lfuEntry struct {
	count uint64
	seq   uint64 // admission order, used as the tie-break
}

var _ Strategy[string] = (*LFU[string])(nil)

func NewLFU[V any](cfg EvictionConfig) (*LFU[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &LFU[V]{
		maxSize: cfg.MaxSize,
		log:     cfg.logger(),
		hooks:   cfg.hook(),
		counts:  make(map[string]*lfuEntry),
	}, nil
}

func (s *LFU[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
	var zero V
	v, ok, err := b.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		s.mu.Lock()
		if e, tracked := s.counts[key]; tracked {
			e.count++
		} else {
			s.evictIfFullLocked(ctx, b)
			s.admitLocked(key).count = 1
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
	if _, err := s.Set(ctx, b, key, v, 0); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *LFU[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	_, tracked := s.counts[key]
	if !tracked {
		s.evictIfFullLocked(ctx, b)
		s.admitLocked(key) // new keys start at count 0; reads earn frequency
	}
	s.mu.Unlock()

	applied, err := b.Set(ctx, key, value, ttl)
	if (err != nil || !applied) && !tracked {
		s.mu.Lock()
		delete(s.counts, key)
		s.mu.Unlock()
	}
	return applied, err
}

func (s *LFU[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	removed, err := b.Delete(ctx, key)
	if err == nil && removed {
		s.mu.Lock()
		delete(s.counts, key)
		s.mu.Unlock()
	}
	return removed, err
}

func (s *LFU[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	s.mu.Lock()
	s.counts = make(map[string]*lfuEntry)
	s.mu.Unlock()
	return b.Clear(ctx)
}

// Len reports the shadow-index size.
func (s *LFU[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

func (s *LFU[V]) admitLocked(key string) *lfuEntry {
	e := &lfuEntry{seq: s.nextSeq}
	s.nextSeq++
	s.counts[key] = e
	return e
}

func (s *LFU[V]) evictIfFullLocked(ctx context.Context, b backend.Backend[V]) {
	if len(s.counts) < s.maxSize {
		return
	}
	var victim string
	var best *lfuEntry
	for k, e := range s.counts {
		if best == nil || e.count < best.count || (e.count == best.count && e.seq < best.seq) {
			victim, best = k, e
		}
	}
	if best == nil {
		return
	}
	delete(s.counts, victim)
	if _, err := b.Delete(ctx, victim); err != nil {
		s.log.Warn("lfu eviction delete failed", Fields{"key": victim, "err": err})
	}
	s.hooks.CapacityEvicted(victim, "lfu")
}
