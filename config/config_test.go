package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial/compress"
	"eserial/internal/demo"
	"eserial/schema"
	"eserial/store/file"
)

func TestLoad(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "empty uses defaults",
			yaml: "",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name: "redis",
			yaml: `
compressor: snappy
store:
  kind: redis
  redis:
    addr: cache:6379
    ttl: 90s
codec:
  max_objects: 1000
log:
  level: debug
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, StoreRedis, c.Store.Kind)
				assert.Equal(t, "cache:6379", c.Store.Redis.Addr)
				assert.Equal(t, "eserial:", c.Store.Redis.Prefix)
				assert.Equal(t, 90*time.Second, c.Store.Redis.TTL)
				assert.Equal(t, uint32(1000), c.Codec.MaxObjects)
				assert.Equal(t, "snappy", c.Compressor)
			},
		},
		{
			name: "etcd",
			yaml: `
store:
  kind: etcd
  etcd:
    endpoints: [a:2379, b:2379]
    dial_timeout: 1s
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"a:2379", "b:2379"}, c.Store.Etcd.Endpoints)
				assert.Equal(t, time.Second, c.Store.Etcd.DialTimeout)
			},
		},
		{name: "unknown field", yaml: "stroe: {}", wantErr: true},
		{name: "unknown store", yaml: "store: {kind: s3}", wantErr: true},
		{name: "unknown compressor", yaml: "compressor: brotli", wantErr: true},
		{name: "bad level", yaml: "log: {level: loud}", wantErr: true},
		{name: "redis without addr", yaml: "store: {kind: redis, redis: {addr: ''}}", wantErr: true},
		{name: "etcd without endpoints", yaml: "store: {kind: etcd, etcd: {endpoints: []}}", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load(strings.NewReader(tc.yaml))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, c)
		})
	}
}

func TestConfig_Build(t *testing.T) {
	c := Default()
	c.Store.File.Dir = t.TempDir()
	c.Compressor = "gzip"
	c.Codec.BufferPool = true

	logger, err := c.Logger()
	require.NoError(t, err)
	s, closer, err := c.NewStore(context.Background())
	require.NoError(t, err)
	defer func() {
		_ = closer.Close()
	}()
	assert.IsType(t, &file.Store{}, s)

	reg := schema.NewRegistry()
	demo.Register(reg, 1)
	codec, err := c.NewCodec(reg, logger)
	require.NoError(t, err)
	assert.Same(t, reg, codec.Registry())

	snap, err := c.NewSnapshotter(codec)
	require.NoError(t, err)
	f, err := snap.Pack(context.Background(), demo.NewSample(), nil)
	require.NoError(t, err)
	gz, err := compress.ByName("gzip")
	require.NoError(t, err)
	assert.Equal(t, gz.Code(), f.Compresser)

	c.MaxBody = 8
	snap, err = c.NewSnapshotter(codec)
	require.NoError(t, err)
	_, err = snap.Unpack(context.Background(), f)
	assert.ErrorIs(t, err, compress.ErrTooLarge)
}
