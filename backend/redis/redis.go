// Package redis adapts a go-redis client to the raw store contract.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tidegate/stratacache/backend"
	"github.com/tidegate/stratacache/codec"
	"github.com/tidegate/stratacache/internal/util"
)

var ErrNilClient = errors.New("redis store: nil client")

// Store serializes values through a codec and keeps them in Redis. TTLs
// passed to Store are applied natively (SET with expiry) in addition to the
// Tracked layer's lazy enforcement.
type Store[V any] struct {
	rdb         goredis.UniversalClient
	codec       codec.Codec[V]
	closeClient bool
}

var _ backend.Raw[string] = (*Store[string])(nil)

type Config[V any] struct {
	Client      goredis.UniversalClient
	Codec       codec.Codec[V]
	CloseClient bool // set true only if this store exclusively owns the client
}

func New[V any](cfg Config[V]) (*Store[V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Codec == nil {
		return nil, errors.New("redis store: nil codec")
	}
	return &Store[V]{rdb: cfg.Client, codec: cfg.Codec, closeClient: cfg.CloseClient}, nil
}

func (s *Store[V]) Load(ctx context.Context, key string) (V, bool, error) {
	var zero V
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return zero, false, nil // miss
	}
	if err != nil {
		return zero, false, &backend.Error{Store: "redis", Op: "get", Key: key, Err: err}
	}
	v, err := s.codec.Decode(b)
	if err != nil {
		// self-heal: drop undecodable entry
		_ = s.rdb.Del(ctx, key).Err()
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) Store(ctx context.Context, key string, value V, ttl time.Duration) error {
	b, err := s.codec.Encode(value)
	if err != nil {
		return &backend.Error{Store: "redis", Op: "encode", Key: key, Err: err}
	}
	if ttl < 0 {
		ttl = 0 // non-positive TTLs mean "no expiry"
	}
	if err := s.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return &backend.Error{Store: "redis", Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *Store[V]) Remove(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, &backend.Error{Store: "redis", Op: "del", Key: key, Err: err}
	}
	return n > 0, nil
}

func (s *Store[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, &backend.Error{Store: "redis", Op: "exists", Key: key, Err: err}
	}
	return n > 0, nil
}

func (s *Store[V]) Reset(ctx context.Context) error {
	keys, err := s.Keys(ctx, "")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return &backend.Error{Store: "redis", Op: "clear", Err: err}
	}
	return nil
}

// Keys scans the whole keyspace of the client's logical database. Pattern
// matching is done client-side so glob semantics stay uniform across stores.
func (s *Store[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	iter := s.rdb.Scan(ctx, 0, "", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		ok, err := util.MatchKey(pattern, k)
		if err != nil {
			return nil, &backend.Error{Store: "redis", Op: "keys", Err: err}
		}
		if ok {
			out = append(out, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, &backend.Error{Store: "redis", Op: "scan", Err: err}
	}
	return out, nil
}

func (s *Store[V]) Len(ctx context.Context) (int, error) {
	n, err := s.rdb.DBSize(ctx).Result()
	if err != nil {
		return 0, &backend.Error{Store: "redis", Op: "dbsize", Err: err}
	}
	return int(n), nil
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store[V]) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
