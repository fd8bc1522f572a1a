package snapshot

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/gotomicro/ekit/bean/option"

	"eserial"
	"eserial/compress"
	"eserial/internal/errs"
	"eserial/schema"
	"eserial/serialize"
	"eserial/serialize/graph"
)

// Snapshotter turns graphs into frames and back. Pack uses one serializer
// and one compressor; Unpack accepts any registered code.
type Snapshotter struct {
	serializers map[uint8]serialize.Serializer
	compressors map[uint8]compress.Compressor
	serializer  serialize.Serializer
	compressor  compress.Compressor
	maxBody     int64
}

func NewSnapshotter(codec *eserial.Codec, opts ...option.Option[Snapshotter]) *Snapshotter {
	s := &Snapshotter{
		serializers: make(map[uint8]serialize.Serializer, 2),
		compressors: make(map[uint8]compress.Compressor, 8),
		compressor:  compress.DoNothingCompressor{},
		maxBody:     compress.DefaultMaxSize,
	}
	for _, c := range compress.All() {
		s.compressors[c.Code()] = c
	}
	s.serializer = graph.Serializer{Codec: codec}
	s.serializers[s.serializer.Code()] = s.serializer
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SnapshotterWithCompressor selects the compressor Pack uses and lets Unpack
// read it.
func SnapshotterWithCompressor(c compress.Compressor) option.Option[Snapshotter] {
	return func(s *Snapshotter) {
		s.compressor = c
		s.compressors[c.Code()] = c
	}
}

// SnapshotterWithMaxBody bounds the uncompressed size of frames read by
// Body and Unpack. A negative n removes the bound.
func SnapshotterWithMaxBody(n int64) option.Option[Snapshotter] {
	return func(s *Snapshotter) {
		s.maxBody = n
	}
}

// SnapshotterWithSerializer replaces the graph serializer used by Pack.
func SnapshotterWithSerializer(sl serialize.Serializer) option.Option[Snapshotter] {
	return func(s *Snapshotter) {
		s.serializer = sl
		s.serializers[sl.Code()] = sl
	}
}

// Pack serializes root into a new frame with a fresh id. meta is copied
// into the frame together with the root's type.
func (s *Snapshotter) Pack(ctx context.Context, root schema.Object, meta map[string]string) (*Frame, error) {
	body, err := serialize.Encode(ctx, s.serializer, root)
	if err != nil {
		return nil, err
	}
	data, err := s.compressor.Compress(body)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		Version:    FrameVersion,
		Compresser: s.compressor.Code(),
		Serializer: s.serializer.Code(),
		ID:         uuid.New(),
		Checksum:   xxhash.Sum64(body),
		Meta:       make(map[string]string, len(meta)+1),
		Data:       data,
	}
	for k, v := range meta {
		f.Meta[k] = v
	}
	if root != nil {
		f.Meta[MetaType] = root.TypeID()
	}
	f.CalculateHeaderLength()
	f.CalculateBodyLength()
	return f, nil
}

// Unpack reverses Pack. The checksum is verified before decoding.
func (s *Snapshotter) Unpack(ctx context.Context, f *Frame) (schema.Object, error) {
	sl, ok := s.serializers[f.Serializer]
	if !ok {
		return nil, errs.UnknownSerializerErr(f.Serializer)
	}
	body, err := s.Body(f)
	if err != nil {
		return nil, err
	}
	var root schema.Object
	if err = serialize.Decode(ctx, sl, body, &root); err != nil {
		return nil, err
	}
	return root, nil
}

// Body returns the uncompressed, checksum verified payload of f.
func (s *Snapshotter) Body(f *Frame) ([]byte, error) {
	c, ok := s.compressors[f.Compresser]
	if !ok {
		return nil, errs.UnknownCompressorErr(f.Compresser)
	}
	body, err := compress.UncompressLimit(c, f.Data, s.maxBody)
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(body) != f.Checksum {
		return nil, errs.ErrChecksumMismatch
	}
	return body, nil
}
