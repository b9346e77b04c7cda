// Package history keeps a bounded record of dispatched actions for
// inspection. A Recorder is installed as store middleware; entries can be
// mirrored to a persistent Sink and searched by name.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/store"
)

// DefaultCapacity is the ring size used when NewRecorder gets capacity <= 0.
const DefaultCapacity = 500

// Entry describes one dispatched action.
type Entry struct {
	ID      uuid.UUID
	Seq     uint64
	Name    string
	Params  string
	Changed bool
	Effects int
	At      time.Time
}

// Sink persists entries outside the in-memory ring.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

type options struct {
	filter Filter
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Recorder.
type Option func(*options)

// WithFilter replaces DefaultFilter.
func WithFilter(f Filter) Option {
	return func(o *options) { o.filter = f }
}

// WithSink mirrors every recorded entry to s. Sink errors are logged and
// otherwise ignored.
func WithSink(s Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Recorder is a fixed-size ring of entries. It is safe for concurrent use,
// so an inspection view may read it while the dispatch loop records.
type Recorder[A any] struct {
	opts options

	mu      sync.Mutex
	entries []Entry
	start   int
	n       int
	seq     uint64
}

// NewRecorder creates a recorder holding at most capacity entries.
func NewRecorder[A any](capacity int, opts ...Option) *Recorder[A] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	o := options{filter: DefaultFilter(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder[A]{opts: o, entries: make([]Entry, capacity)}
}

// Middleware returns store middleware that records every dispatch passing
// the recorder's filter.
func Middleware[S, A, E any](r *Recorder[A]) store.Middleware[S, A, E] {
	return func(ctx context.Context, _ *S, action A, next store.Next[E]) store.Result[E] {
		res := next(ctx)
		r.Record(ctx, action, res.Changed, len(res.Effects))
		return res
	}
}

// Record appends an entry for action unless the filter rejects it. It
// reports whether the action was recorded.
func (r *Recorder[A]) Record(ctx context.Context, action A, changed bool, effects int) bool {
	name := actions.Name(action)
	if !r.opts.filter.Allow(name) {
		return false
	}

	r.mu.Lock()
	r.seq++
	e := Entry{
		ID:      uuid.New(),
		Seq:     r.seq,
		Name:    name,
		Params:  actions.Params(action),
		Changed: changed,
		Effects: effects,
		At:      r.opts.now(),
	}
	idx := (r.start + r.n) % len(r.entries)
	r.entries[idx] = e
	if r.n < len(r.entries) {
		r.n++
	} else {
		r.start = (r.start + 1) % len(r.entries)
	}
	r.mu.Unlock()

	if r.opts.sink != nil {
		if err := r.opts.sink.Record(ctx, e); err != nil {
			r.opts.logger.Warn("history sink failed",
				slog.String("action", name),
				slog.String("error", err.Error()),
			)
		}
	}
	return true
}

// Entries returns the recorded entries, oldest first.
func (r *Recorder[A]) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.entries[(r.start+i)%len(r.entries)]
	}
	return out
}

// Last returns up to n of the newest entries, newest first.
func (r *Recorder[A]) Last(n int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.n {
		n = r.n
	}
	out := make([]Entry, 0, n)
	for i := r.n - 1; i >= r.n-n; i-- {
		out = append(out, r.entries[(r.start+i)%len(r.entries)])
	}
	return out
}

// Len reports how many entries are held.
func (r *Recorder[A]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Capacity reports the ring size.
func (r *Recorder[A]) Capacity() int {
	return len(r.entries)
}

// Clear drops every entry. Sequence numbers keep increasing.
func (r *Recorder[A]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
	r.start, r.n = 0, 0
}

// Filter returns the active filter.
func (r *Recorder[A]) Filter() Filter {
	return r.opts.filter
}
