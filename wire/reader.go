package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"eserial/internal/errs"
)

// chunkSize is the largest payload allocated up front.
const chunkSize = 64 << 10

// DefaultMaxLen bounds strings, byte blobs and sequences read from a stream.
const DefaultMaxLen = 64 << 20

// Reader consumes wire values from a source. Like Writer it keeps the first
// failure and returns zero values afterwards.
type Reader struct {
	r      *bufio.Reader
	off    int64
	err    error
	maxLen uint32
	buf    [12]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), maxLen: DefaultMaxLen}
}

// SetMaxLen changes the length limit for strings, blobs and sequences.
func (r *Reader) SetMaxLen(n uint32) {
	if n > 0 {
		r.maxLen = n
	}
}

func (r *Reader) Err() error { return r.err }

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

// Fail records a format error at the current offset unless an error is
// already pending.
func (r *Reader) Fail(format string, args ...any) {
	if r.err == nil {
		r.err = &errs.FormatError{Offset: r.off, Reason: fmt.Sprintf(format, args...)}
	}
}

func (r *Reader) read(bs []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, bs)
	r.off += int64(n)
	if err != nil {
		r.fail(err)
		return false
	}
	return true
}

func (r *Reader) fail(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		r.err = &errs.TruncatedStreamError{Offset: r.off, Err: err}
	} else {
		r.err = &errs.IOError{Op: "read", Err: err}
	}
}

// Header consumes and checks the magic and format version.
func (r *Reader) Header() {
	if !r.read(r.buf[:4]) {
		return
	}
	if string(r.buf[:4]) != Magic {
		r.Fail("bad magic %q", r.buf[:4])
		return
	}
	if v := r.Uint32(); r.err == nil && v != FormatVersion {
		r.Fail("unsupported format version %d", v)
	}
}

func (r *Reader) Tag() Tag {
	if !r.read(r.buf[:1]) {
		return 0
	}
	return Tag(r.buf[0])
}

func (r *Reader) Byte() byte {
	if !r.read(r.buf[:1]) {
		return 0
	}
	return r.buf[0]
}

func (r *Reader) Uint32() uint32 {
	if !r.read(r.buf[:4]) {
		return 0
	}
	return binary.BigEndian.Uint32(r.buf[:4])
}

func (r *Reader) Uint64() uint64 {
	if !r.read(r.buf[:8]) {
		return 0
	}
	return binary.BigEndian.Uint64(r.buf[:8])
}

// Len reads a u32 count and checks it against the configured limit.
func (r *Reader) Len() uint32 {
	n := r.Uint32()
	if r.err == nil && n > r.maxLen {
		r.Fail("length %d exceeds limit %d", n, r.maxLen)
		return 0
	}
	return n
}

func (r *Reader) Bytes() []byte {
	n := r.Len()
	if r.err != nil {
		return nil
	}
	if n <= chunkSize {
		bs := make([]byte, n)
		if !r.read(bs) {
			return nil
		}
		return bs
	}
	// large payloads grow with the data actually received, so a short
	// stream cannot force an allocation of its declared length
	buf := bytes.NewBuffer(make([]byte, 0, chunkSize))
	m, err := io.CopyN(buf, r.r, int64(n))
	r.off += m
	if err != nil {
		r.fail(err)
		return nil
	}
	return buf.Bytes()
}

func (r *Reader) String() string {
	return string(r.Bytes())
}

// Primitive reads the code and payload of a PRIMITIVE value whose tag has
// already been consumed.
func (r *Reader) Primitive() (Primitive, any) {
	p := Primitive(r.Byte())
	if r.err != nil {
		return 0, nil
	}
	var v any
	switch p {
	case Bool:
		switch r.Byte() {
		case 0:
			v = false
		case 1:
			v = true
		default:
			r.Fail("bad bool payload")
		}
	case Int32:
		v = int32(r.Uint32())
	case Int64:
		v = int64(r.Uint64())
	case Uint32:
		v = r.Uint32()
	case Uint64:
		v = r.Uint64()
	case Float32:
		v = math.Float32frombits(r.Uint32())
	case Float64:
		v = math.Float64frombits(r.Uint64())
	case String:
		v = r.String()
	case Bytes:
		v = r.Bytes()
	case Time:
		sec := int64(r.Uint64())
		nsec := r.Uint32()
		if r.err == nil && nsec >= uint32(time.Second) {
			r.Fail("bad time nanoseconds %d", nsec)
		}
		v = time.Unix(sec, int64(nsec)).UTC()
	default:
		r.Fail("unknown primitive code %d", byte(p))
	}
	if r.err != nil {
		return 0, nil
	}
	return p, v
}
