// Package limit bounds the output of stream decompressors.
package limit

import (
	"io"

	"eserial/internal/errs"
)

// ReadAll reads r to the end and fails with errs.ErrTooLarge once more than
// n bytes come out. A negative n reads without bound.
func ReadAll(r io.Reader, n int64) ([]byte, error) {
	if n < 0 {
		return io.ReadAll(r)
	}
	res, err := io.ReadAll(io.LimitReader(r, n+1))
	if err != nil {
		return nil, err
	}
	if int64(len(res)) > n {
		return nil, errs.ErrTooLarge
	}
	return res, nil
}
