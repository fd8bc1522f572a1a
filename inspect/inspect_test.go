package inspect_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial"
	"eserial/inspect"
	"eserial/internal/demo"
	"eserial/schema"
	"eserial/wire"
)

func sampleStream(t *testing.T) []byte {
	reg := schema.NewRegistry()
	demo.Register(reg, 1)
	r := demo.NewSample()
	r.Value = 0.5
	r.Array = []*demo.Sample{r}
	r.Secret = "x"
	data, err := eserial.NewCodec(eserial.CodecWithRegistry(reg)).Marshal(context.Background(), r)
	require.NoError(t, err)
	return data
}

func TestScan_SelfReference(t *testing.T) {
	s, err := inspect.Scan(bytes.NewReader(sampleStream(t)))
	require.NoError(t, err)

	require.Len(t, s.TypeDefs, 1)
	assert.Equal(t, demo.TypeID, s.TypeDefs[0].TypeID)
	assert.Equal(t, []inspect.FieldDef{
		{Name: "value", Kind: "float64"},
		{Name: "mark", Kind: "bool"},
		{Name: "name", Kind: "string"},
		{Name: "date", Kind: "time"},
		{Name: "array", Kind: "array<ref>"},
		{Name: "list", Kind: "sequence<ref>"},
	}, s.TypeDefs[0].Fields)

	require.Len(t, s.Records, 1)
	rec := s.Records[0]
	assert.Equal(t, uint32(0), rec.ID)
	assert.Equal(t, uint32(1), rec.Version)
	assert.Equal(t, uint32(1), s.Declared)

	assert.Equal(t, 0.5, rec.Fields[0].Value.Data)
	arr := rec.Fields[4].Value
	assert.Equal(t, inspect.KindSequence, arr.Kind)
	assert.Equal(t, []inspect.Value{{Kind: inspect.KindReference, Ref: 0, RefType: demo.TypeID}}, arr.Elems)
	assert.Equal(t, inspect.KindNull, rec.Fields[5].Value.Kind)
}

func TestStream_JSON(t *testing.T) {
	s, err := inspect.Scan(bytes.NewReader(sampleStream(t)))
	require.NoError(t, err)
	data, err := s.JSON()
	require.NoError(t, err)

	var doc struct {
		Objects []struct {
			ID     float64        `json:"id"`
			Fields map[string]any `json:"fields"`
		} `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Objects, 1)
	assert.Equal(t, 0.5, doc.Objects[0].Fields["value"])
	assert.Equal(t, []any{map[string]any{"$ref": float64(0), "$type": demo.TypeID}}, doc.Objects[0].Fields["array"])
	assert.Nil(t, doc.Objects[0].Fields["list"])
}

func TestScan_Errors(t *testing.T) {
	valid := sampleStream(t)
	testCases := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "truncated",
			data:    valid[:len(valid)/2],
			wantErr: eserial.ErrTruncated,
		},
		{
			name:    "bad magic",
			data:    append([]byte("XXXX"), valid[4:]...),
			wantErr: eserial.ErrFormat,
		},
		{
			name: "object without type def",
			data: func() []byte {
				var buf bytes.Buffer
				w := wire.NewWriter(&buf)
				w.Header()
				w.Tag(wire.TagObject)
				w.Uint32(0)
				w.String("x")
				w.Uint32(1)
				_ = w.Flush()
				return buf.Bytes()
			}(),
			wantErr: eserial.ErrFormat,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inspect.Scan(bytes.NewReader(tc.data))
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}
