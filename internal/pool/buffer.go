// Package pool keeps scratch buffers for Marshal calls.
package pool

import (
	"bytes"
	"time"

	"github.com/silenceper/pool"
)

// maxRetained is the largest buffer handed back to the pool; bigger ones are
// dropped so one huge graph does not pin memory.
const maxRetained = 1 << 20

type Config struct {
	InitialCap  int
	MaxIdle     int
	MaxCap      int
	IdleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		InitialCap:  2,
		MaxIdle:     16,
		MaxCap:      256,
		IdleTimeout: time.Minute,
	}
}

// Buffers is a bounded pool of *bytes.Buffer. Get blocks once MaxCap buffers
// are checked out.
type Buffers struct {
	p pool.Pool
}

func NewBuffers(cfg Config) (*Buffers, error) {
	p, err := pool.NewChannelPool(&pool.Config{
		InitialCap: cfg.InitialCap,
		MaxIdle:    cfg.MaxIdle,
		MaxCap:     cfg.MaxCap,
		Factory: func() (interface{}, error) {
			return bytes.NewBuffer(make([]byte, 0, 4096)), nil
		},
		Close: func(i interface{}) error {
			i.(*bytes.Buffer).Reset()
			return nil
		},
		IdleTimeout: cfg.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Buffers{p: p}, nil
}

func (b *Buffers) Get() (*bytes.Buffer, error) {
	i, err := b.p.Get()
	if err != nil {
		return nil, err
	}
	buf := i.(*bytes.Buffer)
	buf.Reset()
	return buf, nil
}

func (b *Buffers) Put(buf *bytes.Buffer) error {
	if buf.Cap() > maxRetained {
		return b.p.Close(buf)
	}
	return b.p.Put(buf)
}

// Len reports the number of idle buffers.
func (b *Buffers) Len() int {
	return b.p.Len()
}

func (b *Buffers) Release() {
	b.p.Release()
}
