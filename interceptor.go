package eserial

import "context"

type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// Invocation describes one Encode or Decode call. Objects and Bytes are
// filled in by the time the innermost handler returns.
type Invocation struct {
	Op Op
	// TypeID is the root type; on decode it is only known afterwards.
	TypeID  string
	Objects int
	Bytes   int64
}

type Handler func(ctx context.Context, inv *Invocation) error

// Interceptor wraps a codec call, in the spirit of grpc unary interceptors.
type Interceptor func(ctx context.Context, inv *Invocation, next Handler) error

func chain(interceptors []Interceptor, h Handler) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic, next := interceptors[i], h
		h = func(ctx context.Context, inv *Invocation) error {
			return ic(ctx, inv, next)
		}
	}
	return h
}
