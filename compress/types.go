package compress

import "eserial/internal/errs"

// DefaultMaxSize bounds uncompressed payloads unless a caller picks another
// limit.
const DefaultMaxSize = 256 << 20

// ErrTooLarge is returned when uncompressed data passes its limit.
var ErrTooLarge = errs.ErrTooLarge

// Compressor -> compression algorithm abstract
type Compressor interface {
	Code() byte
	Name() string
	Compress(data []byte) ([]byte, error)
	Uncompress(data []byte) ([]byte, error)
}

// LimitedCompressor can stop decompressing once the output passes a limit.
type LimitedCompressor interface {
	Compressor
	UncompressLimit(data []byte, n int64) ([]byte, error)
}

// UncompressLimit uncompresses data with c and fails with errs.ErrTooLarge
// when the result is longer than n bytes. Compressors that do not implement
// LimitedCompressor are checked after the fact.
func UncompressLimit(c Compressor, data []byte, n int64) ([]byte, error) {
	if lc, ok := c.(LimitedCompressor); ok {
		return lc.UncompressLimit(data, n)
	}
	res, err := c.Uncompress(data)
	if err != nil {
		return nil, err
	}
	if n >= 0 && int64(len(res)) > n {
		return nil, errs.ErrTooLarge
	}
	return res, nil
}

// DoNothingCompressor leaves data as is.
type DoNothingCompressor struct{}

func (DoNothingCompressor) Code() byte {
	return 0
}

func (DoNothingCompressor) Name() string {
	return "none"
}

func (DoNothingCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (DoNothingCompressor) Uncompress(data []byte) ([]byte, error) {
	return data, nil
}

func (DoNothingCompressor) UncompressLimit(data []byte, n int64) ([]byte, error) {
	if n >= 0 && int64(len(data)) > n {
		return nil, errs.ErrTooLarge
	}
	return data, nil
}
