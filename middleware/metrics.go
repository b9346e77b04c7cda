package middleware

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/store"
)

// meterName is the instrumentation scope name for dispatch metrics.
const meterName = "github.com/jask/tuidispatch"

// Metrics returns middleware that records dispatch metrics with the global
// MeterProvider.
//
// Instruments:
//   - tuidispatch.dispatch.duration (Float64Histogram): reducer time in
//     seconds, by action and category
//   - tuidispatch.dispatch.actions (Int64Counter): dispatched actions, by
//     action, category and changed
//   - tuidispatch.dispatch.effects (Int64Counter): effects emitted, by
//     action and category
func Metrics[S, A, E any]() store.Middleware[S, A, E] {
	return MetricsWithMeter[S, A, E](otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter[S, A, E any](meter metric.Meter) store.Middleware[S, A, E] {
	// On error the API hands back noop instruments.
	duration, _ := meter.Float64Histogram(
		"tuidispatch.dispatch.duration",
		metric.WithDescription("Duration of reducer calls in seconds"),
		metric.WithUnit("s"),
	)
	dispatched, _ := meter.Int64Counter(
		"tuidispatch.dispatch.actions",
		metric.WithDescription("Total number of dispatched actions"),
		metric.WithUnit("{action}"),
	)
	effects, _ := meter.Int64Counter(
		"tuidispatch.dispatch.effects",
		metric.WithDescription("Total number of effects emitted by reducers"),
		metric.WithUnit("{effect}"),
	)

	return func(ctx context.Context, _ *S, action A, next store.Next[E]) store.Result[E] {
		start := time.Now()
		res := next(ctx)
		elapsed := time.Since(start).Seconds()

		name := actions.Name(action)
		base := []attribute.KeyValue{
			attribute.String("action", name),
			attribute.String("category", actions.Category(name)),
		}
		duration.Record(ctx, elapsed, metric.WithAttributes(base...))
		dispatched.Add(ctx, 1, metric.WithAttributes(
			append(base, attribute.String("changed", strconv.FormatBool(res.Changed)))...,
		))
		if n := len(res.Effects); n > 0 {
			effects.Add(ctx, int64(n), metric.WithAttributes(base...))
		}
		return res
	}
}
