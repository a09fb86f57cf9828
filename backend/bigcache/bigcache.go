// Package bigcache adapts allegro/bigcache to the raw store contract.
//
// BigCache stores bytes and expires entries by a global life window rather
// than per-entry TTLs, so ttl arguments are ignored here; lazy expiry still
// applies through the Tracked wrapper.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/tidegate/stratacache/backend"
	"github.com/tidegate/stratacache/codec"
	"github.com/tidegate/stratacache/internal/util"
)

type Store[V any] struct {
	c     *bc.BigCache
	codec codec.Codec[V]
}

var _ backend.Raw[string] = (*Store[string])(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New[V any](cfg Config, cd codec.Codec[V]) (*Store[V], error) {
	if cd == nil {
		return nil, errors.New("bigcache store: nil codec")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store[V]{c: c, codec: cd}, nil
}

func (s *Store[V]) Load(_ context.Context, key string) (V, bool, error) {
	var zero V
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &backend.Error{Store: "bigcache", Op: "get", Key: key, Err: err}
	}
	v, err := s.codec.Decode(b)
	if err != nil {
		_ = s.c.Delete(key) // self-heal
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) Store(_ context.Context, key string, value V, _ time.Duration) error {
	b, err := s.codec.Encode(value)
	if err != nil {
		return &backend.Error{Store: "bigcache", Op: "encode", Key: key, Err: err}
	}
	if err := s.c.Set(key, b); err != nil {
		return &backend.Error{Store: "bigcache", Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *Store[V]) Remove(_ context.Context, key string) (bool, error) {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &backend.Error{Store: "bigcache", Op: "delete", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store[V]) Has(_ context.Context, key string) (bool, error) {
	_, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &backend.Error{Store: "bigcache", Op: "get", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store[V]) Reset(_ context.Context) error {
	if err := s.c.Reset(); err != nil {
		return &backend.Error{Store: "bigcache", Op: "clear", Err: err}
	}
	return nil
}

func (s *Store[V]) Keys(_ context.Context, pattern string) ([]string, error) {
	var out []string
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue // entry evicted mid-iteration
		}
		ok, err := util.MatchKey(pattern, info.Key())
		if err != nil {
			return nil, &backend.Error{Store: "bigcache", Op: "keys", Err: err}
		}
		if ok {
			out = append(out, info.Key())
		}
	}
	return out, nil
}

func (s *Store[V]) Len(_ context.Context) (int, error) {
	return s.c.Len(), nil
}

func (s *Store[V]) Close(_ context.Context) error {
	return s.c.Close()
}
