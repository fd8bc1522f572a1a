package gzip

import (
	"bytes"
	"compress/gzip"

	"eserial/compress/internal/limit"
)

// Compressor implements compress.Compressor with gzip.
type Compressor struct {
	// Level defaults to gzip.DefaultCompression.
	Level int
}

func (Compressor) Code() byte {
	return 1
}

func (Compressor) Name() string {
	return "gzip"
}

// Compress data
func (c Compressor) Compress(data []byte) ([]byte, error) {
	res := bytes.NewBuffer(nil)
	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	gw, err := gzip.NewWriterLevel(res, level)
	if err != nil {
		return nil, err
	}
	if _, err = gw.Write(data); err != nil {
		return nil, err
	}
	// Close must run before reading res, a deferred Close would leave the
	// trailer unwritten.
	if err = gw.Close(); err != nil {
		return nil, err
	}
	return res.Bytes(), nil
}

// Uncompress data
func (c Compressor) Uncompress(data []byte) ([]byte, error) {
	return c.UncompressLimit(data, -1)
}

// UncompressLimit is Uncompress that stops after n output bytes.
func (Compressor) UncompressLimit(data []byte, n int64) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = gr.Close()
	}()
	return limit.ReadAll(gr, n)
}
