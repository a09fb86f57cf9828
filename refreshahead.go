package stratacache

import (
	"context"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
)

const (
	defaultRefreshAfter = time.Second
	defaultPollEvery    = 500 * time.Millisecond
)

// RefreshAhead proactively refreshes hot entries before they go stale. A
// single background worker is started lazily on the first hit whose last
// refresh is older than the threshold; it periodically walks all tracked
// keys still present in the backend, recomputes each through the refresh
// callback and rewrites the value. Per-key failures are skipped so one bad
// key never blocks others.
type RefreshAhead[V any] struct {
	refresh      RefreshFunc[V]
	refreshAfter time.Duration
	pollEvery    time.Duration
	log          Logger
	hooks        Hooks

	mu      sync.Mutex
	times   map[string]time.Time
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

var _ Strategy[string] = (*RefreshAhead[string])(nil)

// RefreshAheadOptions tune the background refresh. Zero values fall back to
// defaults.
type RefreshAheadOptions struct {
	RefreshAfter time.Duration // refresh a key when this much time has passed; 0 => 1s
	PollEvery    time.Duration // worker wakeup interval; 0 => 500ms
	Logger       Logger        // nil => NopLogger
	Hooks        Hooks         // nil => NopHooks
}

// NewRefreshAhead configures the refresh callback. A nil callback disables
// background refresh; the strategy degrades to cache-aside behavior.
func NewRefreshAhead[V any](refresh RefreshFunc[V], opts RefreshAheadOptions) *RefreshAhead[V] {
	return &RefreshAhead[V]{
		refresh:      refresh,
		refreshAfter: coalesce(opts.RefreshAfter, defaultRefreshAfter),
		pollEvery:    coalesce(opts.PollEvery, defaultPollEvery),
		log:          coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:        coalesce[Hooks](opts.Hooks, NopHooks{}),
		times:        make(map[string]time.Time),
	}
}

func (s *RefreshAhead[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
	var zero V
	v, ok, err := b.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		if s.refresh != nil && s.refreshDue(key) {
			s.ensureWorker(b)
		}
		return v, true, nil
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
	s.track(key)
	return v, true, nil
}

func (s *RefreshAhead[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	applied, err := b.Set(ctx, key, value, ttl)
	if err == nil && applied {
		s.track(key)
	}
	return applied, err
}

func (s *RefreshAhead[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	removed, err := b.Delete(ctx, key)
	if err == nil && removed {
		s.mu.Lock()
		delete(s.times, key)
		s.mu.Unlock()
	}
	return removed, err
}

// Clear stops the refresh worker (cooperative stop, bounded join), drops all
// tracking and clears the backend. The join is not guaranteed to observe
// completion of an in-flight refresh pass.
func (s *RefreshAhead[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	s.stopWorker()
	s.mu.Lock()
	s.times = make(map[string]time.Time)
	s.mu.Unlock()
	return b.Clear(ctx)
}

func (s *RefreshAhead[V]) track(key string) {
	s.mu.Lock()
	s.times[key] = time.Now()
	s.mu.Unlock()
}

func (s *RefreshAhead[V]) refreshDue(key string) bool {
	s.mu.Lock()
	last := s.times[key] // zero time for untracked keys => due
	s.mu.Unlock()
	return time.Since(last) > s.refreshAfter
}

func (s *RefreshAhead[V]) ensureWorker(b backend.Backend[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.worker(b, s.stopCh, s.done)
}

func (s *RefreshAhead[V]) worker(b backend.Backend[V], stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.refreshTracked(b)
		case <-stopCh:
			return
		}
	}
}

// refreshTracked refreshes every tracked key still present in the backend.
func (s *RefreshAhead[V]) refreshTracked(b backend.Backend[V]) {
	ctx := context.Background()

	s.mu.Lock()
	keys := make([]string, 0, len(s.times))
	for k := range s.times {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	for _, key := range keys {
		ok, err := b.Exists(ctx, key)
		if err != nil || !ok {
			continue
		}
		v, err := s.refresh(ctx, key)
		if err != nil {
			s.log.Warn("refresh-ahead skipped key", Fields{"key": key, "err": err})
			s.hooks.RefreshError(key, err)
			continue
		}
		if _, err := b.Set(ctx, key, v, 0); err != nil {
			s.hooks.RefreshError(key, err)
			continue
		}
		s.track(key)
	}
}

func (s *RefreshAhead[V]) stopWorker() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(workerJoinTimeout):
		s.log.Warn("refresh-ahead worker did not stop in time", nil)
	}
}
