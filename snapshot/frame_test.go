package snapshot

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial/internal/errs"
)

func TestFrame_EncodeDecode(t *testing.T) {
	testCases := []struct {
		name  string
		frame *Frame
	}{
		{
			name: "with meta",
			frame: &Frame{
				Version:    FrameVersion,
				Compresser: 1,
				Serializer: 5,
				ID:         uuid.New(),
				Checksum:   0xdeadbeefcafe,
				Meta:       map[string]string{"type": "demo.Sample", "key": "sample"},
				Data:       []byte("EGRF payload"),
			},
		},
		{
			name: "no meta",
			frame: &Frame{
				Version:    FrameVersion,
				Serializer: 5,
				ID:         uuid.New(),
				Data:       []byte{1, 2, 3},
			},
		},
		{
			name: "no data",
			frame: &Frame{
				Version: FrameVersion,
				Meta:    map[string]string{"empty": ""},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bs, err := EncodeFrame(tc.frame)
			require.NoError(t, err)
			assert.Equal(t, int(tc.frame.HeadLength+tc.frame.BodyLength), len(bs))
			got, err := DecodeFrame(bs)
			require.NoError(t, err)
			assert.Equal(t, tc.frame, got)
		})
	}
}

func TestFrame_MetaOrder(t *testing.T) {
	f := &Frame{Version: FrameVersion, Meta: map[string]string{"b": "2", "a": "1", "c": "3"}}
	first, err := EncodeFrame(f)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EncodeFrame(f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.True(t, bytes.HasSuffix(first, []byte("a\r1\nb\r2\nc\r3\n")))
}

func TestFrame_BadMeta(t *testing.T) {
	_, err := EncodeFrame(&Frame{Version: FrameVersion, Meta: map[string]string{"k": "a\nb"}})
	assert.ErrorIs(t, err, errBadMeta)
}

func TestDecodeFrame_Errors(t *testing.T) {
	valid, err := EncodeFrame(&Frame{
		Version: FrameVersion,
		Meta:    map[string]string{"k": "v"},
		Data:    []byte("data"),
	})
	require.NoError(t, err)

	mutate := func(fn func(bs []byte) []byte) []byte {
		bs := append([]byte(nil), valid...)
		return fn(bs)
	}
	testCases := []struct {
		name string
		bs   []byte
	}{
		{name: "short", bs: valid[:10]},
		{name: "bad version", bs: mutate(func(bs []byte) []byte {
			bs[8] = 9
			return bs
		})},
		{name: "missing body", bs: valid[:len(valid)-1]},
		{name: "trailing bytes", bs: append(append([]byte(nil), valid...), 0)},
		{name: "unterminated meta", bs: mutate(func(bs []byte) []byte {
			bs[fixedHeadLength+3] = 'x'
			return bs
		})},
		{name: "meta without separator", bs: mutate(func(bs []byte) []byte {
			bs[fixedHeadLength+1] = 'x'
			return bs
		})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFrame(tc.bs)
			assert.ErrorIs(t, err, errs.ErrFormat)
		})
	}
}

func TestReadWriteFrame(t *testing.T) {
	buf := &bytes.Buffer{}
	frames := []*Frame{
		{Version: FrameVersion, ID: uuid.New(), Data: []byte("one")},
		{Version: FrameVersion, ID: uuid.New(), Meta: map[string]string{"k": "v"}, Data: []byte("two")},
	}
	for _, f := range frames {
		require.NoError(t, WriteFrame(buf, f))
	}
	full := append([]byte(nil), buf.Bytes()...)

	for _, want := range frames {
		got, err := ReadFrame(buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ReadFrame(buf)
	assert.Equal(t, io.EOF, err)

	_, err = ReadFrame(bytes.NewReader(full[:4]))
	assert.ErrorIs(t, err, errs.ErrTruncated)
	_, err = ReadFrame(bytes.NewReader(full[:20]))
	assert.ErrorIs(t, err, errs.ErrTruncated)
	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 1, 0, 0, 0, 0}))
	assert.ErrorIs(t, err, errs.ErrFormat)
}
