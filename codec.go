// Package eserial encodes object graphs, including shared and cyclic ones,
// into a portable byte stream and rebuilds them with aliasing intact.
//
// Types take part by registering a schema.Descriptor; nothing is discovered
// by reflection. Each Encode or Decode call owns its reference table, so a
// Codec may be shared between goroutines as long as its registry is no
// longer being written.
package eserial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/gotomicro/ekit/bean/option"
	"go.uber.org/zap"

	"eserial/internal/pool"
	"eserial/schema"
	"eserial/wire"
)

type Codec struct {
	registry     *schema.Registry
	logger       *zap.Logger
	interceptors []Interceptor
	maxObjects   uint32
	maxLen       uint32
	buffers      *pool.Buffers
}

func NewCodec(opts ...option.Option[Codec]) *Codec {
	c := &Codec{
		registry: schema.DefaultRegistry,
		logger:   zap.NewNop(),
		maxLen:   wire.DefaultMaxLen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CodecWithRegistry -> option
func CodecWithRegistry(r *schema.Registry) option.Option[Codec] {
	return func(c *Codec) {
		c.registry = r
	}
}

// CodecWithLogger -> option
func CodecWithLogger(l *zap.Logger) option.Option[Codec] {
	return func(c *Codec) {
		c.logger = l
	}
}

// CodecWithInterceptors appends interceptors; the first one is outermost.
func CodecWithInterceptors(ics ...Interceptor) option.Option[Codec] {
	return func(c *Codec) {
		c.interceptors = append(c.interceptors, ics...)
	}
}

// CodecWithMaxObjects caps the number of objects a decode may allocate.
// Zero means no cap.
func CodecWithMaxObjects(n uint32) option.Option[Codec] {
	return func(c *Codec) {
		c.maxObjects = n
	}
}

// CodecWithMaxLen caps decoded strings, byte blobs and sequences.
func CodecWithMaxLen(n uint32) option.Option[Codec] {
	return func(c *Codec) {
		c.maxLen = n
	}
}

// CodecWithBufferPool makes Marshal reuse scratch buffers.
func CodecWithBufferPool(b *pool.Buffers) option.Option[Codec] {
	return func(c *Codec) {
		c.buffers = b
	}
}

func (c *Codec) Registry() *schema.Registry {
	return c.registry
}

// Encode writes the graph reachable from root to w. On failure the bytes
// already written are an unusable prefix and must be discarded.
func (c *Codec) Encode(ctx context.Context, root schema.Object, w io.Writer) error {
	inv := &Invocation{Op: OpEncode}
	if !isNilRef(root) {
		inv.TypeID = root.TypeID()
	}
	return c.invoke(ctx, inv, func(ctx context.Context, inv *Invocation) error {
		e := newEncoder(c.registry, w)
		err := e.encode(ctx, root)
		inv.Objects, inv.Bytes = int(e.count), e.w.Count()
		return err
	})
}

// Decode reads one graph from r and returns its root. A stream without
// objects decodes to a nil root.
func (c *Codec) Decode(ctx context.Context, r io.Reader) (schema.Object, error) {
	var root schema.Object
	inv := &Invocation{Op: OpDecode}
	err := c.invoke(ctx, inv, func(ctx context.Context, inv *Invocation) error {
		d := newDecoder(c.registry, r, c.maxObjects, c.maxLen)
		var err error
		root, err = d.decode(ctx)
		inv.TypeID, inv.Objects, inv.Bytes = d.rootType, int(d.table.defined), d.r.Offset()
		return err
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (c *Codec) Marshal(ctx context.Context, root schema.Object) ([]byte, error) {
	if c.buffers == nil {
		buf := &bytes.Buffer{}
		if err := c.Encode(ctx, root, buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	buf, err := c.buffers.Get()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = c.buffers.Put(buf)
	}()
	if err = c.Encode(ctx, root, buf); err != nil {
		return nil, err
	}
	res := make([]byte, buf.Len())
	copy(res, buf.Bytes())
	return res, nil
}

func (c *Codec) Unmarshal(ctx context.Context, data []byte) (schema.Object, error) {
	return c.Decode(ctx, bytes.NewReader(data))
}

func (c *Codec) invoke(ctx context.Context, inv *Invocation, h Handler) error {
	start := time.Now()
	err := chain(c.interceptors, h)(ctx, inv)
	fields := []zap.Field{
		zap.String("op", string(inv.Op)),
		zap.String("type", inv.TypeID),
		zap.Int("objects", inv.Objects),
		zap.Int64("bytes", inv.Bytes),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch {
	case err == nil:
		c.logger.Debug("graph "+string(inv.Op)+"d", fields...)
	case errors.Is(err, ErrVersionMismatch), errors.Is(err, ErrSchemaMismatch):
		c.logger.Warn("graph schema rejected", append(fields, zap.Error(err))...)
	default:
		c.logger.Debug("graph "+string(inv.Op)+" failed", append(fields, zap.Error(err))...)
	}
	return err
}

var defaultCodec = NewCodec()

// Encode uses a codec bound to schema.DefaultRegistry.
func Encode(ctx context.Context, root schema.Object, w io.Writer) error {
	return defaultCodec.Encode(ctx, root, w)
}

func Decode(ctx context.Context, r io.Reader) (schema.Object, error) {
	return defaultCodec.Decode(ctx, r)
}

func Marshal(ctx context.Context, root schema.Object) ([]byte, error) {
	return defaultCodec.Marshal(ctx, root)
}

func Unmarshal(ctx context.Context, data []byte) (schema.Object, error) {
	return defaultCodec.Unmarshal(ctx, data)
}
