// Package file implements a raw store that keeps one codec-encoded file per
// cache key under a directory.
//
// Values are wrapped in the wire frame so foreign or truncated files are
// detected on read and removed instead of surfacing garbage. Filenames are
// sanitized (and hashed when overlong), so Keys reports the sanitized form
// of each key, not necessarily the original string.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidegate/stratacache/backend"
	"github.com/tidegate/stratacache/codec"
	"github.com/tidegate/stratacache/internal/util"
	"github.com/tidegate/stratacache/internal/wire"
)

const suffix = ".cache"

type Store[V any] struct {
	dir   string
	codec codec.Codec[V]
	mu    sync.Mutex
}

var _ backend.Raw[string] = (*Store[string])(nil)

// New creates the cache directory if needed and returns a store writing
// codec-encoded entries into it.
func New[V any](dir string, c codec.Codec[V]) (*Store[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &backend.Error{Store: "file", Op: "mkdir", Err: err}
	}
	return &Store[V]{dir: dir, codec: c}, nil
}

func (s *Store[V]) path(key string) string {
	return filepath.Join(s.dir, util.FileKey(key)+suffix)
}

func (s *Store[V]) Load(ctx context.Context, key string) (V, bool, error) {
	var zero V
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &backend.Error{Store: "file", Op: "read", Key: key, Err: err}
	}

	payload, err := wire.DecodeEntry(b)
	if err != nil {
		_ = os.Remove(s.path(key)) // self-heal corrupt entry
		return zero, false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		_ = os.Remove(s.path(key)) // self-heal
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) Store(ctx context.Context, key string, value V, _ time.Duration) error {
	payload, err := s.codec.Encode(value)
	if err != nil {
		return &backend.Error{Store: "file", Op: "encode", Key: key, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(key), wire.EncodeEntry(payload), 0o644); err != nil {
		return &backend.Error{Store: "file", Op: "write", Key: key, Err: err}
	}
	return nil
}

func (s *Store[V]) Remove(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &backend.Error{Store: "file", Op: "remove", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store[V]) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &backend.Error{Store: "file", Op: "stat", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store[V]) Reset(ctx context.Context) error {
	names, err := s.entryNames()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name+suffix)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &backend.Error{Store: "file", Op: "clear", Key: name, Err: err}
		}
	}
	return nil
}

func (s *Store[V]) Keys(_ context.Context, pattern string) ([]string, error) {
	names, err := s.entryNames()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		ok, err := util.MatchKey(pattern, name)
		if err != nil {
			return nil, &backend.Error{Store: "file", Op: "keys", Err: err}
		}
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Store[V]) Len(_ context.Context) (int, error) {
	names, err := s.entryNames()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (s *Store[V]) Close(_ context.Context) error { return nil }

func (s *Store[V]) entryNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &backend.Error{Store: "file", Op: "readdir", Err: err}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), suffix))
	}
	return out, nil
}
