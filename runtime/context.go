package runtime

import (
	"context"
	"log/slog"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

// Context is handed to the translator for each effect. It is only valid for
// the duration of the translator call.
type Context[A any] struct {
	ctx    context.Context
	sender actions.Sender[A]
	tasks  *tasks.Manager[A]
	subs   *subscriptions.Manager[A]
	logger *slog.Logger
}

// Context returns the context of the cycle that produced the effect. Work
// registered with the registries gets its own context and must not capture
// this one.
func (c *Context[A]) Context() context.Context {
	return c.ctx
}

// Emit enqueues a follow-up action. It is dispatched after every action
// already waiting in the channel.
func (c *Context[A]) Emit(a A) {
	c.sender.Send(a)
}

// Tasks returns the task registry.
func (c *Context[A]) Tasks() *tasks.Manager[A] {
	return c.tasks
}

// Subscriptions returns the subscription registry.
func (c *Context[A]) Subscriptions() *subscriptions.Manager[A] {
	return c.subs
}

// Logger returns the runtime's logger.
func (c *Context[A]) Logger() *slog.Logger {
	return c.logger
}
