// Package tasks runs one-shot asynchronous work keyed by name. Each unit
// yields at most one action, which is delivered to the action channel unless
// the unit was cancelled or replaced first.
//
// Spawning under a key that already has a live unit cancels that unit; its
// result is never delivered, even if it was computed concurrently with the
// replacement. Debounce uses the same replacement to restart its delay.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/internal/keyed"
)

// Key identifies a task for replacement and cancellation.
type Key string

func (k Key) String() string { return string(k) }

// Work is the body of a task. It should watch ctx and return early when it
// is cancelled; whatever it returns after cancellation is discarded.
// Failures are reported by returning an error-carrying action.
type Work[A any] func(ctx context.Context) A

// PausePolicy decides what happens to results that complete while paused.
type PausePolicy = keyed.PausePolicy

const (
	// PauseBuffer holds results and flushes them on Resume.
	PauseBuffer = keyed.PauseBuffer
	// PauseDrop discards results that complete while paused.
	PauseDrop = keyed.PauseDrop
)

// ParsePausePolicy maps "buffer" (or "") and "drop" to a PausePolicy.
func ParsePausePolicy(s string) (PausePolicy, error) {
	return keyed.ParsePausePolicy(s)
}

type options struct {
	logger *slog.Logger
	policy PausePolicy
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger used for lifecycle debug events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPausePolicy sets how results are treated while paused. The default is
// PauseBuffer.
func WithPausePolicy(p PausePolicy) Option {
	return func(o *options) { o.policy = p }
}

// Manager is the task registry. All methods are safe for concurrent use.
type Manager[A any] struct {
	reg *keyed.Registry[A]
}

// New creates a task manager that delivers results to sink.
func New[A any](sink actions.Sender[A], opts ...Option) *Manager[A] {
	o := options{policy: PauseBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[A]{reg: keyed.New[A]("tasks", sink, o.logger, o.policy)}
}

// Spawn starts work under key, cancelling any live unit with the same key.
func (m *Manager[A]) Spawn(key Key, work Work[A]) {
	ctx, gen := m.reg.Register(string(key))
	m.reg.Go(func() {
		a := work(ctx)
		m.reg.Complete(string(key), gen, a)
	})
}

// Debounce schedules work to start after delay. Calling Debounce again
// under the same key before the delay elapses replaces the pending work and
// restarts the delay from zero. Once started the unit behaves as if it had
// been spawned.
func (m *Manager[A]) Debounce(key Key, delay time.Duration, work Work[A]) {
	ctx, gen := m.reg.Register(string(key))
	m.reg.Go(func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		a := work(ctx)
		m.reg.Complete(string(key), gen, a)
	})
}

// Cancel stops the pending or running unit under key. It reports whether
// such a unit existed. Results arriving afterwards are discarded.
func (m *Manager[A]) Cancel(key Key) bool {
	return m.reg.Cancel(string(key))
}

// CancelAll cancels every registered unit, including results buffered while
// paused.
func (m *Manager[A]) CancelAll() {
	m.reg.CancelAll()
}

// Pause holds back result delivery. Units keep executing and new units can
// still be spawned.
func (m *Manager[A]) Pause() {
	m.reg.Pause()
}

// Resume delivers results held while paused, in completion order, and
// returns how many were delivered.
func (m *Manager[A]) Resume() int {
	return m.reg.Resume()
}

// Paused reports whether delivery is held back.
func (m *Manager[A]) Paused() bool {
	return m.reg.Paused()
}

// Buffered reports how many results wait for Resume.
func (m *Manager[A]) Buffered() int {
	return m.reg.Buffered()
}

// Policy returns the configured pause policy.
func (m *Manager[A]) Policy() PausePolicy {
	return m.reg.Policy()
}

// IsRunning reports whether key has a pending or running unit.
func (m *Manager[A]) IsRunning(key Key) bool {
	return m.reg.Contains(string(key))
}

// Len reports the number of pending or running units.
func (m *Manager[A]) Len() int {
	return m.reg.Len()
}

// Keys returns the keys of pending or running units, sorted.
func (m *Manager[A]) Keys() []Key {
	names := m.reg.Keys()
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Key(n)
	}
	return keys
}

// Wait blocks until every unit goroutine has returned. Cancelled units only
// return once their work observes the cancellation.
func (m *Manager[A]) Wait() {
	m.reg.Wait()
}
