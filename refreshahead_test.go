package stratacache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefreshAheadBackgroundRefresh(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	var gen atomic.Int64
	s := NewRefreshAhead[string](func(_ context.Context, key string) (string, error) {
		if key != "k" {
			return "", errors.New("unexpected key")
		}
		return "v" + string(rune('0'+gen.Add(1))), nil
	}, RefreshAheadOptions{RefreshAfter: 10 * time.Millisecond, PollEvery: 10 * time.Millisecond})
	defer s.Clear(ctx, b)

	if _, err := s.Set(ctx, b, "k", "v0", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond) // let the refresh threshold pass

	// A hit on a stale-enough key starts the worker.
	if _, ok, err := s.Get(ctx, b, "k", nil); !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if v, _, _ := b.Get(ctx, "k"); v != "v0" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background refresh never rewrote the value")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRefreshAheadSkipsDeletedKeys(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	var calls atomic.Int64
	s := NewRefreshAhead[string](func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		return "fresh", nil
	}, RefreshAheadOptions{RefreshAfter: 10 * time.Millisecond, PollEvery: 10 * time.Millisecond})
	defer s.Clear(ctx, b)

	if _, err := s.Set(ctx, b, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Delete(ctx, b, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Start the worker via a different key.
	if _, err := s.Set(ctx, b, "live", "v", 0); err != nil {
		t.Fatalf("Set live: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, err := s.Get(ctx, b, "live", nil); !ok || err != nil {
		t.Fatalf("Get live: ok=%v err=%v", ok, err)
	}

	time.Sleep(100 * time.Millisecond)
	if exists, _ := b.Exists(ctx, "k"); exists {
		t.Fatalf("refresh resurrected a deleted key")
	}
}

func TestRefreshAheadSkipsFailingKeys(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	var mu sync.Mutex
	failed := map[string]int{}
	hooks := &recordingHooks{onRefreshError: func(key string, err error) {
		mu.Lock()
		failed[key]++
		mu.Unlock()
	}}

	s := NewRefreshAhead[string](func(_ context.Context, key string) (string, error) {
		if key == "bad" {
			return "", errors.New("source unavailable")
		}
		return "fresh", nil
	}, RefreshAheadOptions{RefreshAfter: 10 * time.Millisecond, PollEvery: 10 * time.Millisecond, Hooks: hooks})
	defer s.Clear(ctx, b)

	for _, k := range []string{"bad", "good"} {
		if _, err := s.Set(ctx, b, k, "stale", 0); err != nil {
			t.Fatalf("Set %q: %v", k, err)
		}
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, err := s.Get(ctx, b, "good", nil); !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if v, _, _ := b.Get(ctx, "good"); v == "fresh" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("healthy key never refreshed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if v, _, _ := b.Get(ctx, "bad"); v != "stale" {
		t.Fatalf("failing key should keep its stale value, got %q", v)
	}
	mu.Lock()
	defer mu.Unlock()
	if failed["bad"] == 0 {
		t.Fatalf("expected RefreshError hook for the failing key")
	}
}

func TestRefreshAheadNilCallbackDegradesToCacheAside(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	s := NewRefreshAhead[string](nil, RefreshAheadOptions{})

	v, ok, err := s.Get(ctx, b, "k", func(context.Context, string) (string, bool, error) {
		return "loaded", true, nil
	})
	if err != nil || !ok || v != "loaded" {
		t.Fatalf("miss fill: v=%q ok=%v err=%v", v, ok, err)
	}
}

// recordingHooks routes hook callbacks to closures for test assertions.
type recordingHooks struct {
	onCapacityEvicted func(key, policy string)
	onFlushError      func(key string, err error)
	onRefreshError    func(key string, err error)
}

func (h *recordingHooks) CapacityEvicted(key, policy string) {
	if h.onCapacityEvicted != nil {
		h.onCapacityEvicted(key, policy)
	}
}

func (h *recordingHooks) FlushError(key string, err error) {
	if h.onFlushError != nil {
		h.onFlushError(key, err)
	}
}

func (h *recordingHooks) RefreshError(key string, err error) {
	if h.onRefreshError != nil {
		h.onRefreshError(key, err)
	}
}
