package stratacache

import (
	"context"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = 5 * time.Second
	workerJoinTimeout    = time.Second
)

// WriteBack lands writes in the backend immediately and defers durability to
// the authoritative source. Pending (key, value) pairs are drained when the
// queue reaches the batch size or the flush interval elapses; a lazily
// started worker covers the interval trigger. Per-entry flush failures
// re-queue only that entry (at-least-once, no ordering guarantee across
// retries).
type WriteBack[V any] struct {
	write         WriteFunc[V]
	batchSize     int
	flushInterval time.Duration
	log           Logger
	hooks         Hooks

	mu        sync.Mutex
	queue     map[string]V
	lastFlush time.Time
	running   bool
	stopCh    chan struct{}
	done      chan struct{}
}

var _ Strategy[string] = (*WriteBack[string])(nil)
var _ Flusher = (*WriteBack[string])(nil)

// WriteBackOptions tune the deferred-write behavior. Zero values fall back
// to defaults.
type WriteBackOptions struct {
	BatchSize     int           // 0 => 10
	FlushInterval time.Duration // 0 => 5s
	Logger        Logger        // nil => NopLogger
	Hooks         Hooks         // nil => NopHooks
}

// NewWriteBack configures the durability callback. A nil write callback
// disables queueing entirely; sets become plain backend writes.
func NewWriteBack[V any](write WriteFunc[V], opts WriteBackOptions) *WriteBack[V] {
	return &WriteBack[V]{
		write:         write,
		batchSize:     coalesce(opts.BatchSize, defaultBatchSize),
		flushInterval: coalesce(opts.FlushInterval, defaultFlushInterval),
		log:           coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:         coalesce[Hooks](opts.Hooks, NopHooks{}),
		queue:         make(map[string]V),
		lastFlush:     time.Now(),
	}
}

// Get fills misses through the strategy's own Set so loaded values also get
// queued for durability.
func (s *WriteBack[V]) Get(ctx context.Context, b backend.Backend[V], key string, miss MissFunc[V]) (V, bool, error) {
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

func (s *WriteBack[V]) Set(ctx context.Context, b backend.Backend[V], key string, value V, ttl time.Duration) (bool, error) {
	applied, err := b.Set(ctx, key, value, ttl)
	if err != nil || !applied || s.write == nil {
		return applied, err
	}

	s.mu.Lock()
	s.queue[key] = value
	full := len(s.queue) >= s.batchSize
	s.mu.Unlock()

	if full {
		if ferr := s.Flush(ctx); ferr != nil {
			return applied, ferr
		}
	}
	s.ensureWorker()
	return applied, nil
}

// Flush drains the current queue snapshot, invoking the write callback per
// entry. A failed entry is re-queued unless a newer value for the same key
// has been enqueued meanwhile.
func (s *WriteBack[V]) Flush(ctx context.Context) error {
	if s.write == nil {
		return nil
	}
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.lastFlush = time.Now()
		s.mu.Unlock()
		return nil
	}
	snapshot := s.queue
	s.queue = make(map[string]V)
	s.lastFlush = time.Now()
	s.mu.Unlock()

	for key, value := range snapshot {
		if err := s.write(ctx, key, value); err != nil {
			s.log.Warn("write-back flush failed; re-queueing", Fields{"key": key, "err": err})
			s.hooks.FlushError(key, err)
			s.mu.Lock()
			if _, exists := s.queue[key]; !exists {
				s.queue[key] = value
			}
			s.mu.Unlock()
		}
	}
	return nil
}

func (s *WriteBack[V]) Delete(ctx context.Context, b backend.Backend[V], key string) (bool, error) {
	return b.Delete(ctx, key)
}

// Clear flushes pending writes, stops the flush worker and clears the
// backend. Clearing twice in a row is a no-op the second time.
func (s *WriteBack[V]) Clear(ctx context.Context, b backend.Backend[V]) (bool, error) {
	if err := s.Flush(ctx); err != nil {
		return false, err
	}
	s.stopWorker()
	return b.Clear(ctx)
}

// Pending reports the number of queued durability writes.
func (s *WriteBack[V]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *WriteBack[V]) ensureWorker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.worker(s.stopCh, s.done)
}

func (s *WriteBack[V]) worker(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			due := len(s.queue) > 0 && time.Since(s.lastFlush) >= s.flushInterval
			s.mu.Unlock()
			if due {
				_ = s.Flush(context.Background())
			}
		case <-stopCh:
			return
		}
	}
}

// stopWorker requests a cooperative stop and joins with a bounded timeout;
// an in-flight flush iteration may outlive the join.
func (s *WriteBack[V]) stopWorker() {
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
		s.log.Warn("write-back worker did not stop in time", nil)
	}
}
