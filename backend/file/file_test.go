package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidegate/stratacache/codec"
)

func newTestStore(t *testing.T) *Store[string] {
	t.Helper()
	s, err := New[string](t.TempDir(), codec.JSON[string]{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Store(ctx, "user:1", "Alice", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if v, ok, err := s.Load(ctx, "user:1"); err != nil || !ok || v != "Alice" {
		t.Fatalf("Load: v=%q ok=%v err=%v", v, ok, err)
	}
	if ok, _ := s.Has(ctx, "user:1"); !ok {
		t.Fatalf("Has missed a stored key")
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Fatalf("Len=%d, want 1", n)
	}
	if removed, _ := s.Remove(ctx, "user:1"); !removed {
		t.Fatalf("Remove reported miss")
	}
	if _, ok, _ := s.Load(ctx, "user:1"); ok {
		t.Fatalf("hit after remove")
	}
}

func TestStoreSelfHealsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New[string](dir, codec.JSON[string]{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Store(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadDir: entries=%d err=%v", len(entries), err)
	}
	name := filepath.Join(dir, entries[0].Name())
	if err := os.WriteFile(name, []byte("not a cache entry"), 0o644); err != nil {
		t.Fatalf("corrupt write: %v", err)
	}

	if _, ok, err := s.Load(ctx, "k"); ok || err != nil {
		t.Fatalf("corrupt entry must read as miss: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("corrupt file not removed: %v", err)
	}
}

func TestStoreKeysReportsSanitizedNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Store(ctx, "a/b", "v", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	keys, err := s.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || strings.Contains(keys[0], "/") {
		t.Fatalf("expected one sanitized name, got %v", keys)
	}
	// the sanitized name resolves back to the same file
	if ok, _ := s.Has(ctx, "a/b"); !ok {
		t.Fatalf("original key no longer resolvable")
	}
}

func TestStoreOverlongKeysHashToStableNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	long := strings.Repeat("k", 500)
	if err := s.Store(ctx, long, "v", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if v, ok, err := s.Load(ctx, long); err != nil || !ok || v != "v" {
		t.Fatalf("Load overlong key: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Store(ctx, k, "v", 0); err != nil {
			t.Fatalf("Store %q: %v", k, err)
		}
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Fatalf("Len=%d after reset", n)
	}
}
