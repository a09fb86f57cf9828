package stratacache

import (
	"context"
	"errors"
	"testing"

	"github.com/tidegate/stratacache/backend"
)

func mustSet(t *testing.T, s Strategy[string], b backend.Backend[string], key, value string) {
	t.Helper()
	if applied, err := s.Set(context.Background(), b, key, value, 0); err != nil || !applied {
		t.Fatalf("Set %q: applied=%v err=%v", key, applied, err)
	}
}

func mustHit(t *testing.T, s Strategy[string], b backend.Backend[string], key string) {
	t.Helper()
	if _, ok, err := s.Get(context.Background(), b, key, nil); err != nil || !ok {
		t.Fatalf("Get %q: ok=%v err=%v", key, ok, err)
	}
}

func wantKeys(t *testing.T, b backend.Backend[string], present []string, absent []string) {
	t.Helper()
	ctx := context.Background()
	for _, k := range present {
		if ok, _ := b.Exists(ctx, k); !ok {
			t.Fatalf("expected %q present", k)
		}
	}
	for _, k := range absent {
		if ok, _ := b.Exists(ctx, k); ok {
			t.Fatalf("expected %q evicted", k)
		}
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	b := newTestBackend()
	s, err := NewLRU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustSet(t, s, b, "c", "3")
	wantKeys(t, b, []string{"b", "c"}, []string{"a"})
	if s.Len() != 2 {
		t.Fatalf("index size %d, want 2", s.Len())
	}
}

func TestLRUReadProtectsFromEviction(t *testing.T) {
	b := newTestBackend()
	s, err := NewLRU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustHit(t, s, b, "a") // a becomes most recent; b is now the victim
	mustSet(t, s, b, "c", "3")
	wantKeys(t, b, []string{"a", "c"}, []string{"b"})
}

func TestLRUAdmitsForeignKeysOnHit(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	s, err := NewLRU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	// key written around the strategy
	if _, err := b.Set(ctx, "outsider", "v", 0); err != nil {
		t.Fatalf("backend Set: %v", err)
	}
	mustHit(t, s, b, "outsider")
	if s.Len() != 1 {
		t.Fatalf("foreign key not admitted, index size %d", s.Len())
	}
}

func TestLRUUpdateDoesNotEvict(t *testing.T) {
	b := newTestBackend()
	s, err := NewLRU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustSet(t, s, b, "a", "updated") // already tracked, nothing to admit
	wantKeys(t, b, []string{"a", "b"}, nil)
	if s.Len() != 2 {
		t.Fatalf("index size %d, want 2", s.Len())
	}
}

func TestLRUDeleteFreesCapacity(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	s, err := NewLRU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	if removed, err := s.Delete(ctx, b, "a"); err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	mustSet(t, s, b, "c", "3")
	wantKeys(t, b, []string{"b", "c"}, []string{"a"})
}

func TestLFUEvictsLeastFrequentlyUsed(t *testing.T) {
	b := newTestBackend()
	s, err := NewLFU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLFU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustHit(t, s, b, "a") // a: 1 read, b: 0 reads
	mustSet(t, s, b, "c", "3")
	wantKeys(t, b, []string{"a", "c"}, []string{"b"})
}

func TestLFUTieBreaksByInsertionOrder(t *testing.T) {
	b := newTestBackend()
	s, err := NewLFU[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewLFU: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustSet(t, s, b, "c", "3") // a and b both at 0 reads; a is older
	wantKeys(t, b, []string{"b", "c"}, []string{"a"})
}

func TestFIFOIgnoresReads(t *testing.T) {
	b := newTestBackend()
	s, err := NewFIFO[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustHit(t, s, b, "a") // reads never reorder
	mustSet(t, s, b, "c", "3")
	wantKeys(t, b, []string{"b", "c"}, []string{"a"})
}

func TestFIFOUpdateKeepsPosition(t *testing.T) {
	b := newTestBackend()
	s, err := NewFIFO[string](EvictionConfig{MaxSize: 2})
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	mustSet(t, s, b, "a", "updated")
	mustSet(t, s, b, "c", "3") // a keeps its original slot and goes first
	wantKeys(t, b, []string{"b", "c"}, []string{"a"})
}

func TestEvictionHookReportsVictims(t *testing.T) {
	b := newTestBackend()
	var gotKey, gotPolicy string
	hooks := &recordingHooks{onCapacityEvicted: func(key, policy string) {
		gotKey, gotPolicy = key, policy
	}}
	s, err := NewFIFO[string](EvictionConfig{MaxSize: 1, Hooks: hooks})
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}

	mustSet(t, s, b, "a", "1")
	mustSet(t, s, b, "b", "2")
	if gotKey != "a" || gotPolicy != "fifo" {
		t.Fatalf("hook got key=%q policy=%q", gotKey, gotPolicy)
	}
}

func TestEvictionConfigValidation(t *testing.T) {
	if _, err := NewLRU[string](EvictionConfig{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("lru: expected ErrConfiguration, got %v", err)
	}
	if _, err := NewLFU[string](EvictionConfig{MaxSize: -1}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("lfu: expected ErrConfiguration, got %v", err)
	}
	if _, err := NewFIFO[string](EvictionConfig{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("fifo: expected ErrConfiguration, got %v", err)
	}
}
