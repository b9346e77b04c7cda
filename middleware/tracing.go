package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/store"
)

// tracerName is the instrumentation scope name for dispatch tracing.
const tracerName = "github.com/jask/tuidispatch"

// Tracing returns middleware that wraps each dispatch in a span from the
// global TracerProvider. Without a configured provider it is a pass-through.
func Tracing[S, A, E any]() store.Middleware[S, A, E] {
	return TracingWithTracer[S, A, E](otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
//
// Span attributes: tuidispatch.action.name, tuidispatch.action.category,
// tuidispatch.action.async_result, tuidispatch.changed and
// tuidispatch.effects. A panicking reducer marks the span as failed and the
// panic continues to the caller.
func TracingWithTracer[S, A, E any](tracer trace.Tracer) store.Middleware[S, A, E] {
	return func(ctx context.Context, _ *S, action A, next store.Next[E]) store.Result[E] {
		name := actions.Name(action)
		ctx, span := tracer.Start(ctx, "tuidispatch.dispatch",
			trace.WithAttributes(
				attribute.String("tuidispatch.action.name", name),
				attribute.String("tuidispatch.action.category", actions.Category(name)),
				attribute.Bool("tuidispatch.action.async_result", actions.IsAsyncResult(name)),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()
		defer func() {
			if p := recover(); p != nil {
				span.SetStatus(codes.Error, fmt.Sprint(p))
				panic(p)
			}
		}()

		res := next(ctx)
		span.SetAttributes(
			attribute.Bool("tuidispatch.changed", res.Changed),
			attribute.Int("tuidispatch.effects", len(res.Effects)),
		)
		span.SetStatus(codes.Ok, "")
		return res
	}
}
