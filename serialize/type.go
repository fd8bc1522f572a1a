package serialize

import "context"

// Serializer -> serialization protocol abstract
type Serializer interface {
	Code() byte
	Encode(val any) ([]byte, error)
	Decode(data []byte, val any) error
}

// ContextSerializer is implemented by serializers whose work can be
// cancelled.
type ContextSerializer interface {
	Serializer
	EncodeContext(ctx context.Context, val any) ([]byte, error)
	DecodeContext(ctx context.Context, data []byte, val any) error
}

// Encode prefers EncodeContext when s offers it.
func Encode(ctx context.Context, s Serializer, val any) ([]byte, error) {
	if cs, ok := s.(ContextSerializer); ok {
		return cs.EncodeContext(ctx, val)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Encode(val)
}

func Decode(ctx context.Context, s Serializer, data []byte, val any) error {
	if cs, ok := s.(ContextSerializer); ok {
		return cs.DecodeContext(ctx, data, val)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Decode(data, val)
}
