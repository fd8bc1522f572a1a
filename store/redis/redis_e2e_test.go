//go:build e2e

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial/store"
)

func TestStore_E2E(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	s := NewStore(rdb, StoreWithPrefix("eserial-test:"), StoreWithTTL(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Put(ctx, "sample", []byte{0, 1, 2}))
	data, err := s.Get(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)

	ttl, err := rdb.TTL(ctx, "eserial-test:sample").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0)

	require.NoError(t, s.Delete(ctx, "sample"))
	_, err = s.Get(ctx, "sample")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
