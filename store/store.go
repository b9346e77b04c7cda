// Package store is the dispatch core: it owns the application state and
// runs the reducer for one action at a time.
//
// The store never executes effects and never touches the task or
// subscription registries. A panicking reducer is not recovered; the panic
// reaches the caller of Dispatch.
package store

import "context"

// Reducer applies action to state and declares the outcome. It must be
// total, non-blocking and free of side effects other than mutating state.
type Reducer[S, A, E any] func(state *S, action A) Result[E]

// Next is the remainder of a middleware chain.
type Next[E any] func(ctx context.Context) Result[E]

// Middleware wraps a dispatch. It receives the context, the action being
// dispatched and the next handler. Middleware must call next exactly once
// and return its Result (it may inspect but should not rewrite it).
type Middleware[S, A, E any] func(ctx context.Context, state *S, action A, next Next[E]) Result[E]

// Chain composes middleware. The first middleware is the outermost:
// Chain(logging, tracing) runs logging → tracing → reducer.
func Chain[S, A, E any](mws ...Middleware[S, A, E]) Middleware[S, A, E] {
	return func(ctx context.Context, state *S, action A, next Next[E]) Result[E] {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) Result[E] {
				return mw(ctx, state, action, prev)
			}
		}
		return h(ctx)
	}
}

// Store owns state and serializes reducer calls. It is not safe for
// concurrent use: callers must not invoke Dispatch from more than one
// goroutine at a time (the runtime's single consumer loop guarantees this).
type Store[S, A, E any] struct {
	state   S
	reducer Reducer[S, A, E]
	mw      Middleware[S, A, E]
}

// New creates a store with an initial state and reducer.
func New[S, A, E any](state S, reducer Reducer[S, A, E], mws ...Middleware[S, A, E]) *Store[S, A, E] {
	s := &Store[S, A, E]{state: state, reducer: reducer}
	if len(mws) > 0 {
		s.mw = Chain(mws...)
	}
	return s
}

// Use appends middleware to the store's chain.
func (s *Store[S, A, E]) Use(mws ...Middleware[S, A, E]) {
	if len(mws) == 0 {
		return
	}
	if s.mw != nil {
		mws = append([]Middleware[S, A, E]{s.mw}, mws...)
	}
	s.mw = Chain(mws...)
}

// Dispatch runs the reducer for action.
func (s *Store[S, A, E]) Dispatch(action A) Result[E] {
	return s.DispatchContext(context.Background(), action)
}

// DispatchContext runs action through the middleware chain and the reducer.
// The context only reaches middleware; reducers never block.
func (s *Store[S, A, E]) DispatchContext(ctx context.Context, action A) Result[E] {
	if s.mw == nil {
		return s.reducer(&s.state, action)
	}
	return s.mw(ctx, &s.state, action, func(context.Context) Result[E] {
		return s.reducer(&s.state, action)
	})
}

// State returns the current state. The pointer must only be read from the
// goroutine that calls Dispatch.
func (s *Store[S, A, E]) State() *S {
	return &s.state
}
