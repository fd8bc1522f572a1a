package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"eserial/internal/errs"
)

const (
	splitter     = '\n'
	pairSplitter = '\r'

	// FrameVersion is the only frame layout this package reads.
	FrameVersion uint8 = 1

	// head length, body length, version, compresser, serializer, id, checksum
	fixedHeadLength = 4 + 4 + 1 + 1 + 1 + 16 + 8
	// DefaultMaxFrame bounds the size ReadFrame will allocate for.
	DefaultMaxFrame = 256 << 20
)

var errBadMeta = errors.New("snapshot: meta keys and values must not contain CR or LF")

// Frame wraps one serialized graph with what is needed to read it back.
type Frame struct {
	HeadLength uint32
	BodyLength uint32
	Version    uint8
	// compression code of Data
	Compresser uint8
	// serialization code of the uncompressed body
	Serializer uint8
	ID         uuid.UUID
	// xxhash of the uncompressed body
	Checksum uint64

	Meta map[string]string

	Data []byte
}

func (f *Frame) CalculateHeaderLength() {
	headLength := fixedHeadLength
	for key, value := range f.Meta {
		// key\rvalue\n
		headLength += len(key) + 1 + len(value) + 1
	}
	f.HeadLength = uint32(headLength)
}

func (f *Frame) CalculateBodyLength() {
	f.BodyLength = uint32(len(f.Data))
}

// EncodeFrame lays the frame out in big endian. Both lengths are recomputed,
// meta pairs are written in key order.
func EncodeFrame(f *Frame) ([]byte, error) {
	keys := make([]string, 0, len(f.Meta))
	for key, value := range f.Meta {
		if strings.ContainsAny(key, "\r\n") || strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("%w: %q", errBadMeta, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	f.CalculateHeaderLength()
	f.CalculateBodyLength()

	bs := make([]byte, int(f.HeadLength)+int(f.BodyLength))
	binary.BigEndian.PutUint32(bs[0:4], f.HeadLength)
	binary.BigEndian.PutUint32(bs[4:8], f.BodyLength)
	bs[8] = f.Version
	bs[9] = f.Compresser
	bs[10] = f.Serializer
	copy(bs[11:27], f.ID[:])
	binary.BigEndian.PutUint64(bs[27:35], f.Checksum)

	cur := bs[fixedHeadLength:]
	for _, key := range keys {
		cur = cur[copy(cur, key):]
		cur[0] = pairSplitter
		cur = cur[1:]
		cur = cur[copy(cur, f.Meta[key]):]
		cur[0] = splitter
		cur = cur[1:]
	}
	copy(cur, f.Data)
	return bs, nil
}

// DecodeFrame parses bs, which must hold exactly one frame. Data aliases bs.
func DecodeFrame(bs []byte) (*Frame, error) {
	if len(bs) < fixedHeadLength {
		return nil, frameErr(0, "frame of %d bytes is shorter than its fixed header", len(bs))
	}
	f := &Frame{
		HeadLength: binary.BigEndian.Uint32(bs[0:4]),
		BodyLength: binary.BigEndian.Uint32(bs[4:8]),
		Version:    bs[8],
		Compresser: bs[9],
		Serializer: bs[10],
		Checksum:   binary.BigEndian.Uint64(bs[27:35]),
	}
	copy(f.ID[:], bs[11:27])
	if f.Version != FrameVersion {
		return nil, frameErr(8, "unsupported frame version %d", f.Version)
	}
	if f.HeadLength < fixedHeadLength || uint64(f.HeadLength)+uint64(f.BodyLength) != uint64(len(bs)) {
		return nil, frameErr(0, "lengths %d+%d do not match a frame of %d bytes", f.HeadLength, f.BodyLength, len(bs))
	}

	header := bs[fixedHeadLength:f.HeadLength]
	if len(header) > 0 {
		f.Meta = make(map[string]string, 4)
	}
	for len(header) > 0 {
		offset := int64(f.HeadLength) - int64(len(header))
		index := bytes.IndexByte(header, splitter)
		if index < 0 {
			return nil, frameErr(offset, "meta pair is not terminated")
		}
		pair := header[:index]
		pairIndex := bytes.IndexByte(pair, pairSplitter)
		if pairIndex < 0 {
			return nil, frameErr(offset, "meta pair has no separator")
		}
		f.Meta[string(pair[:pairIndex])] = string(pair[pairIndex+1:])
		header = header[index+1:]
	}
	if f.BodyLength != 0 {
		f.Data = bs[f.HeadLength:]
	}
	return f, nil
}

// WriteFrame writes f to w. Frames are self-delimiting so several may follow
// each other in one stream.
func WriteFrame(w io.Writer, f *Frame) error {
	bs, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	if _, err = w.Write(bs); err != nil {
		return &errs.IOError{Op: "write frame", Err: err}
	}
	return nil
}

// ReadFrame reads the next frame from r. It returns io.EOF when r ends
// cleanly between frames.
func ReadFrame(r io.Reader) (*Frame, error) {
	lens := make([]byte, 8)
	if n, err := io.ReadFull(r, lens); err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, readErr(int64(n), err)
	}
	headLength := binary.BigEndian.Uint32(lens[0:4])
	bodyLength := binary.BigEndian.Uint32(lens[4:8])
	total := uint64(headLength) + uint64(bodyLength)
	if headLength < fixedHeadLength || total > DefaultMaxFrame {
		return nil, frameErr(0, "implausible frame lengths %d+%d", headLength, bodyLength)
	}
	bs := make([]byte, total)
	copy(bs, lens)
	if n, err := io.ReadFull(r, bs[8:]); err != nil {
		return nil, readErr(int64(8+n), err)
	}
	return DecodeFrame(bs)
}

func frameErr(offset int64, format string, args ...any) error {
	return &errs.FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func readErr(offset int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &errs.TruncatedStreamError{Offset: offset, Err: err}
	}
	return &errs.IOError{Op: "read frame", Err: err}
}
