// Package keyed implements the handle table shared by the task and
// subscription registries: one live handle per key, a generation marker
// per handle, and a registry-wide pause buffer.
//
// Every delivery goes through Deliver, which checks the caller's generation
// against the live handle while holding the table lock. A superseded or
// cancelled unit therefore cannot reach the sink no matter how its timing
// races with Cancel or a replacing registration.
package keyed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// PausePolicy decides what happens to emissions while a registry is paused.
type PausePolicy int

const (
	// PauseBuffer keeps emissions and flushes them in order on Resume.
	PauseBuffer PausePolicy = iota
	// PauseDrop discards emissions produced while paused.
	PauseDrop
)

func (p PausePolicy) String() string {
	switch p {
	case PauseBuffer:
		return "buffer"
	case PauseDrop:
		return "drop"
	default:
		return fmt.Sprintf("PausePolicy(%d)", int(p))
	}
}

// ParsePausePolicy maps "buffer" and "drop" to their policies.
func ParsePausePolicy(s string) (PausePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buffer":
		return PauseBuffer, nil
	case "drop":
		return PauseDrop, nil
	default:
		return PauseBuffer, fmt.Errorf("unknown pause policy %q", s)
	}
}

// Sink receives delivered actions. actions.Channel satisfies it.
type Sink[A any] interface {
	Send(a A) bool
}

// Gen identifies one registration under a key.
type Gen uint64

type handle struct {
	gen    Gen
	cancel context.CancelFunc
}

type pending[A any] struct {
	key    string
	gen    Gen
	action A
}

// Registry is a mutex-guarded table of live handles.
type Registry[A any] struct {
	name   string
	sink   Sink[A]
	logger *slog.Logger
	policy PausePolicy

	mu       sync.Mutex
	handles  map[string]handle
	lastGen  Gen
	paused   bool
	buffered []pending[A]

	wg sync.WaitGroup
}

// New creates a registry delivering to sink. name only appears in logs.
func New[A any](name string, sink Sink[A], logger *slog.Logger, policy PausePolicy) *Registry[A] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry[A]{
		name:    name,
		sink:    sink,
		logger:  logger.With(slog.String("registry", name)),
		policy:  policy,
		handles: make(map[string]handle),
	}
}

// Register installs a fresh handle under key and returns the context the
// unit must watch plus its generation. Any previous handle under key is
// cancelled, and its buffered emissions are discarded, before Register
// returns. Buffered results of units that already finished under key are
// kept.
func (r *Registry[A]) Register(key string) (context.Context, Gen) {
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.handles[key]; ok {
		old.cancel()
		r.purgeLocked(key, old.gen)
		r.logger.Debug("replaced",
			slog.String("key", key),
			slog.Uint64("old_gen", uint64(old.gen)),
		)
	}
	r.lastGen++
	gen := r.lastGen
	r.handles[key] = handle{gen: gen, cancel: cancel}
	r.logger.Debug("registered", slog.String("key", key), slog.Uint64("gen", uint64(gen)))
	return ctx, gen
}

// Go runs fn on a tracked goroutine. Wait blocks until every such goroutine
// has returned.
func (r *Registry[A]) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Wait blocks until all goroutines started with Go have returned.
func (r *Registry[A]) Wait() {
	r.wg.Wait()
}

// Deliver forwards a if gen is still the live generation for key. While
// paused the action is buffered or dropped according to the policy. It
// reports whether a was accepted.
func (r *Registry[A]) Deliver(key string, gen Gen, a A) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliverLocked(key, gen, a)
}

// Complete delivers a final action and retires the handle in one step.
// Tasks use it so that their key frees up exactly when their result is
// accepted.
func (r *Registry[A]) Complete(key string, gen Gen, a A) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok := r.deliverLocked(key, gen, a)
	if ok {
		r.retireLocked(key, gen)
	}
	return ok
}

// Retire removes the handle for key if gen is still live. Sources that end
// on their own call it.
func (r *Registry[A]) Retire(key string, gen Gen) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retireLocked(key, gen)
}

func (r *Registry[A]) deliverLocked(key string, gen Gen, a A) bool {
	h, ok := r.handles[key]
	if !ok || h.gen != gen {
		r.logger.Debug("dropped stale",
			slog.String("key", key),
			slog.Uint64("gen", uint64(gen)),
		)
		return false
	}
	if r.paused {
		if r.policy == PauseDrop {
			r.logger.Debug("dropped while paused", slog.String("key", key))
			return false
		}
		r.buffered = append(r.buffered, pending[A]{key: key, gen: gen, action: a})
		return true
	}
	return r.sink.Send(a)
}

func (r *Registry[A]) retireLocked(key string, gen Gen) bool {
	h, ok := r.handles[key]
	if !ok || h.gen != gen {
		return false
	}
	h.cancel()
	delete(r.handles, key)
	r.logger.Debug("retired", slog.String("key", key), slog.Uint64("gen", uint64(gen)))
	return true
}

// purgeLocked drops buffered emissions of one generation under key.
func (r *Registry[A]) purgeLocked(key string, gen Gen) {
	if len(r.buffered) == 0 {
		return
	}
	kept := r.buffered[:0]
	for _, p := range r.buffered {
		if p.key != key || p.gen != gen {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(r.buffered); i++ {
		r.buffered[i] = pending[A]{}
	}
	r.buffered = kept
}

// Cancel stops the live unit under key and discards anything it buffered.
// Results of units that already finished under key stay buffered. It
// reports whether a live handle existed.
func (r *Registry[A]) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[key]
	if !ok {
		return false
	}
	r.purgeLocked(key, h.gen)
	h.cancel()
	delete(r.handles, key)
	r.logger.Debug("cancelled", slog.String("key", key), slog.Uint64("gen", uint64(h.gen)))
	return true
}

// CancelAll cancels every handle and clears the pause buffer.
func (r *Registry[A]) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, h := range r.handles {
		h.cancel()
		delete(r.handles, key)
	}
	clear(r.buffered)
	r.buffered = nil
	r.logger.Debug("cancelled all")
}

// Pause starts buffering (or dropping) deliveries. Units keep running.
func (r *Registry[A]) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		return
	}
	r.paused = true
	r.logger.Debug("paused", slog.String("policy", r.policy.String()))
}

// Resume flushes buffered actions to the sink in their original order and
// returns how many were flushed.
func (r *Registry[A]) Resume() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return 0
	}
	r.paused = false
	n := 0
	for _, p := range r.buffered {
		if r.sink.Send(p.action) {
			n++
		}
	}
	clear(r.buffered)
	r.buffered = r.buffered[:0]
	r.logger.Debug("resumed", slog.Int("flushed", n))
	return n
}

// Paused reports whether deliveries are currently held back.
func (r *Registry[A]) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Buffered reports how many actions wait for Resume.
func (r *Registry[A]) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffered)
}

// Contains reports whether key has a live handle.
func (r *Registry[A]) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[key]
	return ok
}

// Len reports the number of live handles.
func (r *Registry[A]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Keys returns the live keys in sorted order.
func (r *Registry[A]) Keys() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Policy returns the configured pause policy.
func (r *Registry[A]) Policy() PausePolicy {
	return r.policy
}
