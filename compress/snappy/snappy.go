package snappy

import (
	"bytes"

	"github.com/golang/snappy"

	"eserial/compress/internal/limit"
)

// Compressor implements compress.Compressor with the snappy framing format.
type Compressor struct{}

func (Compressor) Code() byte {
	return 3
}

func (Compressor) Name() string {
	return "snappy"
}

// Compress data
func (Compressor) Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := snappy.NewBufferedWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	// Close flushes the last chunk; it cannot be deferred.
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Uncompress data
func (c Compressor) Uncompress(data []byte) ([]byte, error) {
	return c.UncompressLimit(data, -1)
}

// UncompressLimit is Uncompress that stops after n output bytes.
func (Compressor) UncompressLimit(data []byte, n int64) ([]byte, error) {
	return limit.ReadAll(snappy.NewReader(bytes.NewReader(data)), n)
}
