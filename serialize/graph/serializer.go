package graph

import (
	"context"

	"eserial"
	"eserial/internal/errs"
	"eserial/schema"
)

// Serializer -> object graph serialization protocol
type Serializer struct {
	Codec *eserial.Codec
}

func (s Serializer) Code() byte {
	return 5
}

func (s Serializer) codec() *eserial.Codec {
	if s.Codec == nil {
		return eserial.NewCodec()
	}
	return s.Codec
}

// Encode requires a schema.Object root.
func (s Serializer) Encode(val any) ([]byte, error) {
	return s.EncodeContext(context.Background(), val)
}

func (s Serializer) EncodeContext(ctx context.Context, val any) ([]byte, error) {
	if val == nil {
		return s.codec().Marshal(ctx, nil)
	}
	root, ok := val.(schema.Object)
	if !ok {
		return nil, errs.GraphSerializeTypError
	}
	return s.codec().Marshal(ctx, root)
}

// Decode stores the decoded root into val, which must be a *schema.Object.
func (s Serializer) Decode(data []byte, val any) error {
	return s.DecodeContext(context.Background(), data, val)
}

func (s Serializer) DecodeContext(ctx context.Context, data []byte, val any) error {
	dst, ok := val.(*schema.Object)
	if !ok || dst == nil {
		return errs.GraphDeserializeTypError
	}
	root, err := s.codec().Unmarshal(ctx, data)
	if err != nil {
		return err
	}
	*dst = root
	return nil
}
