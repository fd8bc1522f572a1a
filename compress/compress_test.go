package compress_test

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial/compress"
	"eserial/compress/gzip"
	"eserial/compress/lz4"
	"eserial/compress/snappy"
	"eserial/compress/zlib"
	"eserial/internal/errs"
)

func TestCompressors(t *testing.T) {
	compressors := []compress.Compressor{
		compress.DoNothingCompressor{},
		gzip.Compressor{Level: 9},
		lz4.Compressor{},
		snappy.Compressor{},
		zlib.Compressor{},
	}
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "short", data: []byte("EGRF")},
		{name: "repetitive", data: bytes.Repeat([]byte("graph stream "), 4096)},
		{name: "binary", data: []byte{0, 1, 2, 3, 255, 254, 253, 7, 7, 7}},
	}
	codes := make(map[byte]string)
	for _, c := range compressors {
		if name, ok := codes[c.Code()]; ok {
			t.Fatalf("%s and %s share code %d", name, c.Name(), c.Code())
		}
		codes[c.Code()] = c.Name()
		for _, tc := range testCases {
			t.Run(c.Name()+"/"+tc.name, func(t *testing.T) {
				packed, err := c.Compress(tc.data)
				require.NoError(t, err)
				got, err := c.Uncompress(packed)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(tc.data, got))
			})
		}
	}
}

func TestLz4_Ratio(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 1<<16)
	packed, err := lz4.Compressor{}.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data)/10)
}

func TestLookup(t *testing.T) {
	for _, c := range compress.All() {
		byName, err := compress.ByName(c.Name())
		require.NoError(t, err)
		assert.Equal(t, c.Code(), byName.Code())
		byCode, err := compress.ByCode(c.Code())
		require.NoError(t, err)
		assert.Equal(t, c.Name(), byCode.Name())
	}
	none, err := compress.ByName("")
	require.NoError(t, err)
	assert.Equal(t, byte(0), none.Code())

	_, err = compress.ByName("brotli")
	assert.ErrorIs(t, err, errs.ErrUnknownCompressor)
	_, err = compress.ByCode(99)
	assert.ErrorIs(t, err, errs.ErrUnknownCompressor)
}

// plain hides the UncompressLimit method of the compressor it wraps.
type plain struct {
	compress.Compressor
}

func TestUncompressLimit(t *testing.T) {
	data := bytes.Repeat([]byte("graph stream "), 4096)
	compressors := []compress.Compressor{
		compress.DoNothingCompressor{},
		gzip.Compressor{},
		lz4.Compressor{},
		snappy.Compressor{},
		zlib.Compressor{},
		plain{Compressor: gzip.Compressor{}},
	}
	testCases := []struct {
		name    string
		limit   int64
		wantErr error
	}{
		{name: "exact", limit: int64(len(data))},
		{name: "unbounded", limit: -1},
		{name: "one short", limit: int64(len(data)) - 1, wantErr: compress.ErrTooLarge},
		{name: "tiny", limit: 16, wantErr: compress.ErrTooLarge},
	}
	for i, c := range compressors {
		packed, err := c.Compress(data)
		require.NoError(t, err)
		for _, tc := range testCases {
			t.Run(fmt.Sprintf("%d_%s/%s", i, c.Name(), tc.name), func(t *testing.T) {
				got, err := compress.UncompressLimit(c, packed, tc.limit)
				if tc.wantErr != nil {
					assert.ErrorIs(t, err, tc.wantErr)
					assert.Nil(t, got)
					return
				}
				require.NoError(t, err)
				assert.True(t, bytes.Equal(data, got))
			})
		}
	}
}

func TestLz4_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		data    []byte
		limit   int64
		wantErr error
	}{
		{
			name:  "short header",
			data:  []byte{0x01, 0x00},
			limit: -1,
		},
		{
			name:  "declared size beyond block bound",
			data:  []byte{0x01, 0xff, 0xff, 0xff, 0xff},
			limit: -1,
		},
		{
			name:    "declared size beyond limit",
			data:    []byte{0x01, 0xff, 0xff, 0xff, 0xff},
			limit:   compress.DefaultMaxSize,
			wantErr: compress.ErrTooLarge,
		},
		{
			name:  "unknown flag",
			data:  []byte{0x07, 0x00, 0x00, 0x00, 0x01, 0x00},
			limit: -1,
		},
		{
			name:  "stored length mismatch",
			data:  []byte{0x00, 0x00, 0x00, 0x00, 0x04, 0x00},
			limit: -1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			got, err := lz4.Compressor{}.UncompressLimit(tc.data, tc.limit)
			runtime.ReadMemStats(&after)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Nil(t, got)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
		})
	}
	// Uncompress applies the block bound as well
	_, err := lz4.Compressor{}.Uncompress([]byte{0x01, 0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}
