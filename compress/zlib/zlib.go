package zlib

import (
	"bytes"
	"compress/zlib"

	"eserial/compress/internal/limit"
)

// Compressor implements compress.Compressor with zlib.
type Compressor struct{}

func (Compressor) Code() byte {
	return 4
}

func (Compressor) Name() string {
	return "zlib"
}

// Compress data
func (Compressor) Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
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
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return limit.ReadAll(r, n)
}
