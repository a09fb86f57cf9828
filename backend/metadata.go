package backend

import (
	"context"
	"sync"
	"time"
)

// Metadata is the per-key record kept by Tracked: one record per live key,
// created on the first successful Set and destroyed exactly when the key is
// deleted, explicitly or via lazy expiry.
type Metadata struct {
	CreatedAt    time.Time
	ExpiresAt    time.Time // zero => never expires
	AccessCount  uint64
	LastAccessed time.Time
	Tags         []string
}

// Expired reports whether the entry is past its expiry at the given instant.
func (m *Metadata) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}

// Tracked decorates a Raw store with per-key metadata and lazy TTL expiry.
// Expiry is checked only on access (Get/Exists); there is no background
// sweep. Size may therefore lag until expired keys are touched.
type Tracked[V any] struct {
	raw Raw[V]

	mu     sync.Mutex
	meta   map[string]*Metadata
	closed bool
}

var _ Backend[string] = (*Tracked[string])(nil)

// NewTracked wraps raw into a full Backend with metadata bookkeeping.
func NewTracked[V any](raw Raw[V]) *Tracked[V] {
	return &Tracked[V]{raw: raw, meta: make(map[string]*Metadata)}
}

func (t *Tracked[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := t.expireIfDue(ctx, key); err != nil {
		return zero, false, err
	}
	v, ok, err := t.raw.Load(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	now := time.Now()
	t.mu.Lock()
	if m, ok := t.meta[key]; ok {
		m.AccessCount++
		m.LastAccessed = now
	}
	t.mu.Unlock()
	return v, true, nil
}

func (t *Tracked[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	if t.isClosed() {
		return false, ErrClosed
	}
	if err := t.raw.Store(ctx, key, value, ttl); err != nil {
		return false, err
	}
	var expires time.Time
	now := time.Now()
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	t.mu.Lock()
	if m, ok := t.meta[key]; ok {
		// update, not replace: creation time and access stats survive
		m.ExpiresAt = expires
	} else {
		t.meta[key] = &Metadata{CreatedAt: now, ExpiresAt: expires, LastAccessed: now}
	}
	t.mu.Unlock()
	return true, nil
}

func (t *Tracked[V]) Delete(ctx context.Context, key string) (bool, error) {
	if t.isClosed() {
		return false, ErrClosed
	}
	removed, err := t.raw.Remove(ctx, key)
	if err != nil {
		return false, err
	}
	if removed {
		t.mu.Lock()
		delete(t.meta, key)
		t.mu.Unlock()
	}
	return removed, nil
}

func (t *Tracked[V]) Exists(ctx context.Context, key string) (bool, error) {
	if err := t.expireIfDue(ctx, key); err != nil {
		return false, err
	}
	return t.raw.Has(ctx, key)
}

func (t *Tracked[V]) Clear(ctx context.Context) (bool, error) {
	if t.isClosed() {
		return false, ErrClosed
	}
	if err := t.raw.Reset(ctx); err != nil {
		return false, err
	}
	t.mu.Lock()
	t.meta = make(map[string]*Metadata)
	t.mu.Unlock()
	return true, nil
}

func (t *Tracked[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	if t.isClosed() {
		return nil, ErrClosed
	}
	return t.raw.Keys(ctx, pattern)
}

func (t *Tracked[V]) Size(ctx context.Context) (int, error) {
	if t.isClosed() {
		return 0, ErrClosed
	}
	return t.raw.Len(ctx)
}

// Close discards all metadata and releases the underlying store.
func (t *Tracked[V]) Close(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.meta = make(map[string]*Metadata)
	t.mu.Unlock()
	return t.raw.Close(ctx)
}

// Meta returns a copy of the metadata record for key, if one exists.
func (t *Tracked[V]) Meta(key string) (Metadata, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.meta[key]
	if !ok {
		return Metadata{}, false
	}
	out := *m
	out.Tags = append([]string(nil), m.Tags...)
	return out, true
}

// SetTags replaces the tag set on an existing metadata record.
func (t *Tracked[V]) SetTags(key string, tags ...string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.meta[key]
	if !ok {
		return false
	}
	m.Tags = append([]string(nil), tags...)
	return true
}

// expireIfDue deletes key synchronously when its metadata says it is past
// expiry. This is the only expiry mechanism.
func (t *Tracked[V]) expireIfDue(ctx context.Context, key string) error {
	if t.isClosed() {
		return ErrClosed
	}
	t.mu.Lock()
	m, ok := t.meta[key]
	expired := ok && m.Expired(time.Now())
	t.mu.Unlock()
	if !expired {
		return nil
	}
	if _, err := t.raw.Remove(ctx, key); err != nil {
		return err
	}
	t.mu.Lock()
	delete(t.meta, key)
	t.mu.Unlock()
	return nil
}

func (t *Tracked[V]) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
