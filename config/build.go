package config

import (
	"context"
	"io"

	"github.com/go-redis/redis/v9"
	"github.com/gotomicro/ekit/bean/option"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"eserial"
	"eserial/compress"
	"eserial/internal/pool"
	"eserial/observability/metrics/prometheus"
	"eserial/schema"
	"eserial/snapshot"
	"eserial/store"
	"eserial/store/etcd"
	"eserial/store/file"
	redisstore "eserial/store/redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewStore opens the configured store. The closer releases its client.
func (c *Config) NewStore(ctx context.Context) (store.Store, io.Closer, error) {
	switch c.Store.Kind {
	case StoreRedis:
		rc := c.Store.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return redisstore.NewStore(client,
			redisstore.StoreWithPrefix(rc.Prefix),
			redisstore.StoreWithTTL(rc.TTL)), client, nil
	case StoreEtcd:
		ec := c.Store.Etcd
		client, err := clientv3.New(clientv3.Config{
			Endpoints:   ec.Endpoints,
			DialTimeout: ec.DialTimeout,
			Context:     ctx,
		})
		if err != nil {
			return nil, nil, err
		}
		return etcd.NewStore(client, etcd.StoreWithPrefix(ec.Prefix)), client, nil
	}
	opts := []option.Option[file.Store]{}
	if c.Store.File.Ext != "" {
		opts = append(opts, file.StoreWithExt(c.Store.File.Ext))
	}
	s, err := file.NewStore(c.Store.File.Dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, nopCloser{}, nil
}

// NewCodec builds a codec over reg with the configured limits and, when
// enabled, metrics registered with the default prometheus registerer.
func (c *Config) NewCodec(reg *schema.Registry, logger *zap.Logger) (*eserial.Codec, error) {
	opts := []option.Option[eserial.Codec]{
		eserial.CodecWithRegistry(reg),
		eserial.CodecWithLogger(logger),
		eserial.CodecWithMaxObjects(c.Codec.MaxObjects),
		eserial.CodecWithMaxLen(c.Codec.MaxLen),
	}
	if c.Codec.BufferPool {
		buffers, err := pool.NewBuffers(pool.DefaultConfig())
		if err != nil {
			return nil, err
		}
		opts = append(opts, eserial.CodecWithBufferPool(buffers))
	}
	if c.Metrics.Enabled {
		b := &prometheus.InterceptorBuilder{
			Namespace: c.Metrics.Namespace,
			Subsystem: "codec",
			Name:      "graph",
			Help:      "object graph encode and decode calls",
		}
		opts = append(opts, eserial.CodecWithInterceptors(b.Build()))
	}
	return eserial.NewCodec(opts...), nil
}

func (c *Config) NewSnapshotter(codec *eserial.Codec) (*snapshot.Snapshotter, error) {
	comp, err := compress.ByName(c.Compressor)
	if err != nil {
		return nil, err
	}
	opts := []option.Option[snapshot.Snapshotter]{snapshot.SnapshotterWithCompressor(comp)}
	if c.MaxBody != 0 {
		opts = append(opts, snapshot.SnapshotterWithMaxBody(c.MaxBody))
	}
	return snapshot.NewSnapshotter(codec, opts...), nil
}
