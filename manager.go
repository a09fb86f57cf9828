package stratacache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
	"github.com/tidegate/stratacache/internal/util"
)

const keySeparator = ":"

type manager[V any] struct {
	b          backend.Backend[V]
	s          Strategy[V]
	namespace  string
	keyPrefix  string
	defaultTTL time.Duration
	log        Logger

	mu sync.Mutex
}

func newManager[V any](opts Options[V]) (*manager[V], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrConfiguration)
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("%w: default ttl must not be negative", ErrConfiguration)
	}

	m := &manager[V]{
		b:          opts.Backend,
		namespace:  coalesce(opts.Namespace, "default"),
		keyPrefix:  opts.KeyPrefix,
		defaultTTL: opts.DefaultTTL,
	}
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	if opts.Strategy != nil {
		m.s = opts.Strategy
	} else {
		m.s = NewCacheAside[V]()
	}
	return m, nil
}

func (m *manager[V]) Get(ctx context.Context, key string, miss MissFunc[V]) (V, bool, error) {
	full := m.fullKey(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Get(ctx, m.b, full, miss)
}

func (m *manager[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	full := m.fullKey(key)
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Set(ctx, m.b, full, value, ttl)
}

func (m *manager[V]) Delete(ctx context.Context, key string) (bool, error) {
	full := m.fullKey(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Delete(ctx, m.b, full)
}

func (m *manager[V]) Exists(ctx context.Context, key string) (bool, error) {
	full := m.fullKey(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.b.Exists(ctx, full)
}

func (m *manager[V]) Clear(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Clear(ctx, m.b)
}

func (m *manager[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.b.Keys(ctx, pattern)
}

func (m *manager[V]) Size(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.b.Size(ctx)
}

// Close drains a pending-write strategy and stops its background worker
// before releasing the backend.
func (m *manager[V]) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.s.(Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			m.log.Warn("flush on close failed", Fields{"err": err})
		}
	}
	if s, ok := m.s.(interface{ stopWorker() }); ok {
		s.stopWorker()
	}
	return m.b.Close(ctx)
}

// fullKey joins the non-empty segments [namespace, key_prefix, key] with the
// fixed separator.
func (m *manager[V]) fullKey(key string) string {
	return util.JoinKey(keySeparator, m.namespace, m.keyPrefix, key)
}
