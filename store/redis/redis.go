package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/gotomicro/ekit/bean/option"

	"eserial/internal/errs"
)

// Store keeps values in redis strings under a common prefix.
type Store struct {
	client redis.Cmdable
	prefix string
	// zero means no expiration
	ttl time.Duration
}

func NewStore(client redis.Cmdable, opts ...option.Option[Store]) *Store {
	s := &Store{client: client, prefix: "eserial:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func StoreWithPrefix(prefix string) option.Option[Store] {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func StoreWithTTL(ttl time.Duration) option.Option[Store] {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.NotFoundErr(key)
	}
	return data, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
