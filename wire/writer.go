package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"eserial/internal/errs"
)

// Writer appends wire values to a sink. The first failure is kept and every
// later call becomes a no-op, so callers check Err once per record.
type Writer struct {
	w   *bufio.Writer
	n   int64
	err error
	buf [12]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Err returns the first write failure.
func (w *Writer) Err() error { return w.err }

// Count returns the number of bytes handed to the sink so far.
func (w *Writer) Count() int64 { return w.n }

func (w *Writer) write(bs []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(bs)
	w.n += int64(n)
	if err != nil {
		w.err = &errs.IOError{Op: "write", Err: err}
	}
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = &errs.IOError{Op: "flush", Err: err}
	}
	return w.err
}

func (w *Writer) Header() {
	w.write([]byte(Magic))
	w.Uint32(FormatVersion)
}

func (w *Writer) Tag(t Tag) {
	w.buf[0] = byte(t)
	w.write(w.buf[:1])
}

func (w *Writer) Uint32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) Uint64(v uint64) {
	binary.BigEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

// lenLimit is the largest length a u32 prefix can carry.
var lenLimit uint64 = math.MaxUint32

// Len writes a u32 length or count. A length the prefix cannot hold fails
// the writer instead of wrapping around.
func (w *Writer) Len(n int) {
	if w.err != nil {
		return
	}
	if uint64(n) > lenLimit {
		w.err = &errs.FormatError{Offset: w.n, Reason: fmt.Sprintf("length %d does not fit a u32 prefix", n)}
		return
	}
	w.Uint32(uint32(n))
}

func (w *Writer) String(s string) {
	w.Len(len(s))
	if w.err != nil {
		return
	}
	n, err := w.w.WriteString(s)
	w.n += int64(n)
	if err != nil {
		w.err = &errs.IOError{Op: "write", Err: err}
	}
}

func (w *Writer) Bytes(bs []byte) {
	w.Len(len(bs))
	w.write(bs)
}

// Reference writes a REFERENCE value.
func (w *Writer) Reference(id uint32, typeID string) {
	w.Tag(TagReference)
	w.Uint32(id)
	w.String(typeID)
}

// Primitive writes a PRIMITIVE value of kind p. It reports false, writing
// nothing, when v does not hold the Go type that p stands for.
func (w *Writer) Primitive(p Primitive, v any) bool {
	var payload func()
	switch p {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		payload = func() {
			w.buf[0] = 0
			if b {
				w.buf[0] = 1
			}
			w.write(w.buf[:1])
		}
	case Int32:
		i, ok := v.(int32)
		if !ok {
			return false
		}
		payload = func() { w.Uint32(uint32(i)) }
	case Int64:
		i, ok := v.(int64)
		if !ok {
			return false
		}
		payload = func() { w.Uint64(uint64(i)) }
	case Uint32:
		i, ok := v.(uint32)
		if !ok {
			return false
		}
		payload = func() { w.Uint32(i) }
	case Uint64:
		i, ok := v.(uint64)
		if !ok {
			return false
		}
		payload = func() { w.Uint64(i) }
	case Float32:
		f, ok := v.(float32)
		if !ok {
			return false
		}
		payload = func() { w.Uint32(math.Float32bits(f)) }
	case Float64:
		f, ok := v.(float64)
		if !ok {
			return false
		}
		payload = func() { w.Uint64(math.Float64bits(f)) }
	case String:
		s, ok := v.(string)
		if !ok {
			return false
		}
		payload = func() { w.String(s) }
	case Bytes:
		bs, ok := v.([]byte)
		if !ok {
			return false
		}
		payload = func() { w.Bytes(bs) }
	case Time:
		t, ok := v.(time.Time)
		if !ok {
			return false
		}
		payload = func() {
			w.Uint64(uint64(t.Unix()))
			w.Uint32(uint32(t.Nanosecond()))
		}
	default:
		return false
	}
	w.Tag(TagPrimitive)
	w.buf[0] = byte(p)
	w.write(w.buf[:1])
	payload()
	return true
}
