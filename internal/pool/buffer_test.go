package pool

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffers(t *testing.T) {
	b, err := NewBuffers(Config{InitialCap: 1, MaxIdle: 2, MaxCap: 4, IdleTimeout: time.Minute})
	require.NoError(t, err)
	defer b.Release()
	assert.Equal(t, 1, b.Len())

	buf, err := b.Get()
	require.NoError(t, err)
	buf.WriteString("leftover")
	require.NoError(t, b.Put(buf))
	assert.Equal(t, 1, b.Len())

	again, err := b.Get()
	require.NoError(t, err)
	assert.Zero(t, again.Len())
	require.NoError(t, b.Put(again))
}

func TestBuffers_DropsLarge(t *testing.T) {
	b, err := NewBuffers(DefaultConfig())
	require.NoError(t, err)
	defer b.Release()

	buf, err := b.Get()
	require.NoError(t, err)
	idle := b.Len()
	buf.Write(bytes.Repeat([]byte{1}, maxRetained+1))
	require.NoError(t, b.Put(buf))
	assert.Equal(t, idle, b.Len())
}

func TestNewBuffers_BadConfig(t *testing.T) {
	_, err := NewBuffers(Config{InitialCap: 5, MaxIdle: 2, MaxCap: 1})
	assert.Error(t, err)
}
