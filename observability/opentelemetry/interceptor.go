package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eserial"
)

const instrumentationName = "eserial/observability/opentelemetry"

type InterceptorBuilder struct {
	tracer trace.Tracer
}

// NewInterceptorBuilder uses the global tracer provider when tracer is nil.
func NewInterceptorBuilder(tracer trace.Tracer) *InterceptorBuilder {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &InterceptorBuilder{tracer: tracer}
}

// Build returns an interceptor that runs every codec call in its own span,
// named "eserial.encode" or "eserial.decode".
func (b *InterceptorBuilder) Build() eserial.Interceptor {
	return func(ctx context.Context, inv *eserial.Invocation, next eserial.Handler) (err error) {
		ctx, span := b.tracer.Start(ctx, "eserial."+string(inv.Op),
			trace.WithAttributes(attribute.String("eserial.op", string(inv.Op))),
			trace.WithSpanKind(trace.SpanKindInternal))
		defer func() {
			span.SetAttributes(
				attribute.String("eserial.type", inv.TypeID),
				attribute.Int("eserial.objects", inv.Objects),
				attribute.Int64("eserial.bytes", inv.Bytes),
			)
			if err != nil {
				span.SetStatus(codes.Error, "graph "+string(inv.Op)+" failed")
				span.RecordError(err)
			} else {
				span.SetStatus(codes.Ok, "OK")
			}
			span.End()
		}()
		err = next(ctx, inv)
		return
	}
}
