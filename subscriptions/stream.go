package subscriptions

import (
	"context"

	"github.com/jask/tuidispatch/internal/keyed"
)

// Stream forwards every item of src, mapped through fn, until src is closed
// or the subscription is cancelled or replaced. A closed source removes its
// own registration.
func Stream[A, T any](m *Manager[A], key Key, src <-chan T, fn func(T) A) {
	ctx, gen := m.reg.Register(string(key))
	m.reg.Go(func() {
		forward(ctx, m.reg, string(key), gen, src, fn)
	})
}

// StreamFunc is Stream for sources that must be opened asynchronously,
// such as a connection that is dialled first. open receives the
// subscription's context and may return nil to end the subscription
// without emitting anything.
func StreamFunc[A, T any](m *Manager[A], key Key, open func(ctx context.Context) <-chan T, fn func(T) A) {
	ctx, gen := m.reg.Register(string(key))
	m.reg.Go(func() {
		src := open(ctx)
		if src == nil {
			m.reg.Retire(string(key), gen)
			return
		}
		forward(ctx, m.reg, string(key), gen, src, fn)
	})
}

func forward[A, T any](ctx context.Context, reg *keyed.Registry[A], key string, gen keyed.Gen, src <-chan T, fn func(T) A) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-src:
			if !ok {
				reg.Retire(key, gen)
				return
			}
			reg.Deliver(key, gen, fn(item))
		}
	}
}
