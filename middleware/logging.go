package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/store"
)

// Logging returns middleware that logs every dispatch at debug level.
func Logging[S, A, E any](logger *slog.Logger) store.Middleware[S, A, E] {
	return func(ctx context.Context, _ *S, action A, next store.Next[E]) store.Result[E] {
		start := time.Now()
		res := next(ctx)
		if !logger.Enabled(ctx, slog.LevelDebug) {
			return res
		}

		attrs := []slog.Attr{
			slog.String("action", actions.Name(action)),
			slog.Bool("changed", res.Changed),
			slog.Int("effects", len(res.Effects)),
			slog.Duration("elapsed", time.Since(start)),
		}
		if p := actions.Params(action); p != "" {
			attrs = append(attrs, slog.String("params", p))
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "action dispatched", attrs...)
		return res
	}
}
