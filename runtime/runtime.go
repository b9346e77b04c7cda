// Package runtime wires the dispatch core to the action channel and the two
// registries, and drives the loop that consumes actions one at a time.
//
// Each cycle receives one action, hands it to the store, passes the
// resulting effects to the application's translator in emission order and
// finally notifies the change listener when the reducer declared a change.
// The translator is the only code that reaches the registries.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/store"
	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

// ErrAlreadyRunning is returned by Run when another Run is in progress.
var ErrAlreadyRunning = errors.New("runtime: already running")

// Translator turns one effect into registry calls or follow-up actions.
type Translator[A, E any] func(effect E, ctx *Context[A])

// Runtime owns the store, the action channel and both registries.
type Runtime[S, A, E any] struct {
	store     *store.Store[S, A, E]
	ch        *actions.Channel[A]
	tasks     *tasks.Manager[A]
	subs      *subscriptions.Manager[A]
	translate Translator[A, E]
	logger    *slog.Logger
	session   string

	mu       sync.Mutex
	onChange []func(*S)

	running atomic.Bool
	frozen  atomic.Bool
}

// New creates a runtime around an initial state, a reducer and an effect
// translator. A nil translator ignores every effect.
func New[S, A, E any](state S, reducer store.Reducer[S, A, E], translate Translator[A, E], opts ...Option) *Runtime[S, A, E] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.session == "" {
		o.session = uuid.NewString()
	}
	if translate == nil {
		translate = func(E, *Context[A]) {}
	}
	logger := o.logger.With(slog.String("session", o.session))

	ch := actions.NewChannel[A]()
	taskOpts := append([]tasks.Option{tasks.WithLogger(logger)}, o.taskOpts...)
	subOpts := append([]subscriptions.Option{subscriptions.WithLogger(logger)}, o.subOpts...)

	return &Runtime[S, A, E]{
		store:     store.New(state, reducer),
		ch:        ch,
		tasks:     tasks.New[A](ch, taskOpts...),
		subs:      subscriptions.New[A](ch, subOpts...),
		translate: translate,
		logger:    logger,
		session:   o.session,
	}
}

// Use appends dispatch middleware. Call it before Run.
func (r *Runtime[S, A, E]) Use(mws ...store.Middleware[S, A, E]) {
	r.store.Use(mws...)
}

// OnChange registers fn to run after every cycle whose reducer declared a
// change. Listeners run on the dispatch goroutine in registration order.
func (r *Runtime[S, A, E]) OnChange(fn func(state *S)) {
	r.mu.Lock()
	r.onChange = append(r.onChange, fn)
	r.mu.Unlock()
}

// Session returns the identifier attached to this runtime's log records.
func (r *Runtime[S, A, E]) Session() string {
	return r.session
}

// Enqueue sends an action to the channel. It never blocks and reports false
// once the runtime has been closed.
func (r *Runtime[S, A, E]) Enqueue(a A) bool {
	return r.ch.Send(a)
}

// Sender exposes the producer side of the action channel for input sources.
func (r *Runtime[S, A, E]) Sender() actions.Sender[A] {
	return r.ch
}

// State returns the current state. It must only be read from the dispatch
// goroutine, for example inside an OnChange listener.
func (r *Runtime[S, A, E]) State() *S {
	return r.store.State()
}

// Close stops accepting actions. Run processes what is already queued and
// then returns nil.
func (r *Runtime[S, A, E]) Close() {
	r.ch.Close()
}

// Run consumes actions until quit reports true for one of them, the channel
// is closed and drained, or ctx is done. The action that satisfies quit is
// not dispatched. On return every task and subscription is cancelled.
func (r *Runtime[S, A, E]) Run(ctx context.Context, quit func(A) bool) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)
	defer r.shutdown()

	r.logger.Info("runtime started")
	for {
		a, err := r.ch.Recv(ctx)
		if errors.Is(err, actions.ErrClosed) {
			r.logger.Info("runtime stopped", slog.String("reason", "closed"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("runtime: receive action: %w", err)
		}
		if quit != nil && quit(a) {
			r.logger.Info("runtime stopped", slog.String("reason", "quit"))
			return nil
		}
		r.Process(ctx, a)
	}
}

// Process runs one full cycle for a: dispatch, effect translation, change
// notification. Run calls it for every received action; hosts that drive
// the loop themselves may call it directly, never concurrently with Run.
func (r *Runtime[S, A, E]) Process(ctx context.Context, a A) store.Result[E] {
	res := r.store.DispatchContext(ctx, a)
	if len(res.Effects) > 0 {
		c := &Context[A]{ctx: ctx, sender: r.ch, tasks: r.tasks, subs: r.subs, logger: r.logger}
		for _, e := range res.Effects {
			r.translate(e, c)
		}
	}
	if res.Changed {
		r.mu.Lock()
		listeners := r.onChange
		r.mu.Unlock()
		state := r.store.State()
		for _, fn := range listeners {
			fn(state)
		}
	}
	return res
}

func (r *Runtime[S, A, E]) shutdown() {
	r.tasks.CancelAll()
	r.subs.CancelAll()
}

// Wait blocks until every task and subscription goroutine has returned.
// Call it after Run so that work ignoring its context does not outlive the
// process unnoticed.
func (r *Runtime[S, A, E]) Wait() {
	r.tasks.Wait()
	r.subs.Wait()
}

// Freeze pauses both registries together. Work keeps executing while frozen
// and its actions are held until Thaw.
func (r *Runtime[S, A, E]) Freeze() {
	if r.frozen.Swap(true) {
		return
	}
	r.tasks.Pause()
	r.subs.Pause()
	r.logger.Debug("frozen")
}

// Thaw resumes both registries and returns how many held actions were
// flushed to the channel.
func (r *Runtime[S, A, E]) Thaw() int {
	if !r.frozen.Swap(false) {
		return 0
	}
	n := r.tasks.Resume() + r.subs.Resume()
	r.logger.Debug("thawed", slog.Int("flushed", n))
	return n
}

// Frozen reports whether the registries are paused by Freeze.
func (r *Runtime[S, A, E]) Frozen() bool {
	return r.frozen.Load()
}

// Tasks exposes read-only task registry state for inspection.
func (r *Runtime[S, A, E]) Tasks() TaskView {
	return r.tasks
}

// Subscriptions exposes read-only subscription registry state for
// inspection.
func (r *Runtime[S, A, E]) Subscriptions() SubscriptionView {
	return r.subs
}

// Pending reports how many actions are queued but not yet dispatched.
func (r *Runtime[S, A, E]) Pending() int {
	return r.ch.Len()
}

// TaskView is the inspection surface of the task registry.
type TaskView interface {
	IsRunning(key tasks.Key) bool
	Len() int
	Keys() []tasks.Key
	Paused() bool
	Buffered() int
	Policy() tasks.PausePolicy
}

// SubscriptionView is the inspection surface of the subscription registry.
type SubscriptionView interface {
	IsActive(key subscriptions.Key) bool
	Len() int
	Keys() []subscriptions.Key
	Paused() bool
	Buffered() int
	Policy() subscriptions.PausePolicy
}
