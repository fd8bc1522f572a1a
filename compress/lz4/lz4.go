package lz4

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"eserial/internal/errs"
)

const (
	stored  byte = 0
	blocked byte = 1
	// flag byte + u32 uncompressed length
	headerLen = 5
	maxRatio  = 255
)

var (
	errShortBlock = errors.New("lz4: block too short")
	errBadSize    = errors.New("lz4: declared size exceeds block bound")
)

// Compressor implements compress.Compressor with lz4 blocks. Lz4 trades
// ratio for very fast decompression. Each block is prefixed with its
// uncompressed length so Uncompress can size its buffer exactly; input that
// does not compress is stored as is.
type Compressor struct{}

func (Compressor) Code() byte {
	return 2
}

func (Compressor) Name() string {
	return "lz4"
}

// Compress data
func (Compressor) Compress(data []byte) ([]byte, error) {
	buf := make([]byte, headerLen+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(buf[1:headerLen], uint32(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf[headerLen:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		buf[0] = stored
		n = copy(buf[headerLen:], data)
	} else {
		buf[0] = blocked
	}
	return buf[:headerLen+n], nil
}

// Uncompress data
func (c Compressor) Uncompress(data []byte) ([]byte, error) {
	return c.UncompressLimit(data, -1)
}

// UncompressLimit is Uncompress that refuses blocks declaring more than n
// output bytes. A negative n only applies the lz4 expansion bound.
func (Compressor) UncompressLimit(data []byte, n int64) ([]byte, error) {
	if len(data) < headerLen {
		return nil, errShortBlock
	}
	size := binary.BigEndian.Uint32(data[1:headerLen])
	body := data[headerLen:]
	if n >= 0 && int64(size) > n {
		return nil, errs.ErrTooLarge
	}
	switch data[0] {
	case stored:
		if uint32(len(body)) != size {
			return nil, errShortBlock
		}
		return append([]byte(nil), body...), nil
	case blocked:
	default:
		return nil, fmt.Errorf("lz4: unknown block flag %d", data[0])
	}
	// a block expands at most maxRatio times, a larger claim is forged
	if uint64(size) > maxRatio*uint64(len(body))+16 {
		return nil, errBadSize
	}
	buf := make([]byte, size)
	m, err := lz4.UncompressBlock(body, buf)
	if err != nil {
		return nil, err
	}
	return buf[:m], nil
}
