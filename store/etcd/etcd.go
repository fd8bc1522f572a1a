package etcd

import (
	"context"

	"github.com/gotomicro/ekit/bean/option"
	clientv3 "go.etcd.io/etcd/client/v3"

	"eserial/internal/errs"
)

// Store keeps values in etcd under a common prefix. Etcd rejects requests
// above its configured size (1.5MiB by default), so large graphs belong in
// another store or behind a compressor.
type Store struct {
	kv     clientv3.KV
	prefix string
}

func NewStore(kv clientv3.KV, opts ...option.Option[Store]) *Store {
	s := &Store{kv: kv, prefix: "/eserial/"}
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

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.kv.Put(ctx, s.prefix+key, string(data))
	return err
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.kv.Get(ctx, s.prefix+key)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, errs.NotFoundErr(key)
	}
	return resp.Kvs[0].Value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.kv.Delete(ctx, s.prefix+key)
	return err
}
