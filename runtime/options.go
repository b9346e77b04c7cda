package runtime

import (
	"log/slog"

	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

type options struct {
	logger   *slog.Logger
	session  string
	taskOpts []tasks.Option
	subOpts  []subscriptions.Option
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger sets the logger shared by the runtime and both registries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSession overrides the generated session identifier.
func WithSession(id string) Option {
	return func(o *options) { o.session = id }
}

// WithTaskOptions passes options through to the task registry.
func WithTaskOptions(opts ...tasks.Option) Option {
	return func(o *options) { o.taskOpts = append(o.taskOpts, opts...) }
}

// WithSubscriptionOptions passes options through to the subscription
// registry.
func WithSubscriptionOptions(opts ...subscriptions.Option) Option {
	return func(o *options) { o.subOpts = append(o.subOpts, opts...) }
}
