// Package subscriptions manages continuous, keyed sources of actions:
// interval timers and externally supplied sequences.
//
// Registering under an existing key replaces the previous source. Pausing
// holds back emissions without touching the sources themselves, so timers
// keep their cadence and Resume flushes what was produced in order.
package subscriptions

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/internal/keyed"
)

// ErrInvalidPeriod is returned when an interval period is not positive.
var ErrInvalidPeriod = errors.New("subscriptions: interval period must be positive")

// Key identifies a subscription. Keys are a separate namespace from task
// keys.
type Key string

func (k Key) String() string { return string(k) }

// PausePolicy decides what happens to emissions while paused.
type PausePolicy = keyed.PausePolicy

const (
	// PauseBuffer holds emissions and flushes them on Resume.
	PauseBuffer = keyed.PauseBuffer
	// PauseDrop discards emissions produced while paused.
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

// WithPausePolicy sets how emissions are treated while paused. The default
// is PauseBuffer.
func WithPausePolicy(p PausePolicy) Option {
	return func(o *options) { o.policy = p }
}

// Manager is the subscription registry. All methods are safe for
// concurrent use.
type Manager[A any] struct {
	reg *keyed.Registry[A]
}

// New creates a subscription manager that delivers to sink.
func New[A any](sink actions.Sender[A], opts ...Option) *Manager[A] {
	o := options{policy: PauseBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[A]{reg: keyed.New[A]("subscriptions", sink, o.logger, o.policy)}
}

// Interval emits factory() once per period. The first emission happens
// after one full period. A non-positive period is rejected with
// ErrInvalidPeriod and leaves any subscription under key untouched.
func (m *Manager[A]) Interval(key Key, period time.Duration, factory func() A) error {
	return m.interval(key, period, factory, false)
}

// IntervalImmediate behaves like Interval with one extra emission as soon
// as the subscription is registered.
func (m *Manager[A]) IntervalImmediate(key Key, period time.Duration, factory func() A) error {
	return m.interval(key, period, factory, true)
}

func (m *Manager[A]) interval(key Key, period time.Duration, factory func() A, immediate bool) error {
	if period <= 0 {
		return fmt.Errorf("%w: %s got %v", ErrInvalidPeriod, key, period)
	}
	ctx, gen := m.reg.Register(string(key))
	ticker := time.NewTicker(period)
	m.reg.Go(func() {
		defer ticker.Stop()
		if immediate {
			m.reg.Deliver(string(key), gen, factory())
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.reg.Deliver(string(key), gen, factory())
			}
		}
	})
	return nil
}

// StreamActions forwards every action read from src until src is closed or
// the subscription is cancelled.
func (m *Manager[A]) StreamActions(key Key, src <-chan A) {
	Stream(m, key, src, func(a A) A { return a })
}

// Cancel stops the subscription under key and discards its buffered
// emissions. It reports whether the subscription existed.
func (m *Manager[A]) Cancel(key Key) bool {
	return m.reg.Cancel(string(key))
}

// CancelAll stops every subscription.
func (m *Manager[A]) CancelAll() {
	m.reg.CancelAll()
}

// Pause holds back emissions; sources keep running.
func (m *Manager[A]) Pause() {
	m.reg.Pause()
}

// Resume flushes held emissions in order and returns how many were
// delivered.
func (m *Manager[A]) Resume() int {
	return m.reg.Resume()
}

// Paused reports whether emissions are held back.
func (m *Manager[A]) Paused() bool {
	return m.reg.Paused()
}

// Buffered reports how many emissions wait for Resume.
func (m *Manager[A]) Buffered() int {
	return m.reg.Buffered()
}

// Policy returns the configured pause policy.
func (m *Manager[A]) Policy() PausePolicy {
	return m.reg.Policy()
}

// IsActive reports whether key has a live subscription.
func (m *Manager[A]) IsActive(key Key) bool {
	return m.reg.Contains(string(key))
}

// Len reports the number of live subscriptions.
func (m *Manager[A]) Len() int {
	return m.reg.Len()
}

// Keys returns the live subscription keys, sorted.
func (m *Manager[A]) Keys() []Key {
	names := m.reg.Keys()
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Key(n)
	}
	return keys
}

// Wait blocks until every source goroutine has returned.
func (m *Manager[A]) Wait() {
	m.reg.Wait()
}
