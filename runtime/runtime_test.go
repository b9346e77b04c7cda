package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/tuidispatch/store"
	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

type testState struct {
	count   int
	results []int
}

type testAction struct {
	kind string
	n    int
}

type testEffect struct {
	kind string
	key  string
	n    int
}

func reduce(s *testState, a testAction) store.Result[testEffect] {
	switch a.kind {
	case "inc":
		s.count++
		return store.Changed[testEffect]()
	case "fetch":
		return store.Effect(testEffect{kind: "spawn", key: "fetch", n: a.n})
	case "block":
		return store.Effect(testEffect{kind: "block", key: "slow"})
	case "tick-on":
		return store.Effect(testEffect{kind: "interval", key: "tick"})
	case "emit":
		return store.Effect(testEffect{kind: "emit"})
	case "multi":
		return store.ChangedWith(
			testEffect{kind: "record", n: 1},
			testEffect{kind: "record", n: 2},
			testEffect{kind: "record", n: 3},
		)
	case "result":
		s.results = append(s.results, a.n)
		return store.Changed[testEffect]()
	}
	return store.Unchanged[testEffect]()
}

type recorder struct {
	effects []testEffect
}

func (rec *recorder) translate(e testEffect, c *Context[testAction]) {
	rec.effects = append(rec.effects, e)
	switch e.kind {
	case "spawn":
		n := e.n
		c.Tasks().Spawn(tasks.Key(e.key), func(context.Context) testAction {
			return testAction{kind: "result", n: n}
		})
	case "block":
		c.Tasks().Spawn(tasks.Key(e.key), func(ctx context.Context) testAction {
			<-ctx.Done()
			return testAction{kind: "result", n: -1}
		})
	case "interval":
		c.Subscriptions().Interval("tick", 5*time.Millisecond, func() testAction {
			return testAction{kind: "inc"}
		})
	case "emit":
		c.Emit(testAction{kind: "inc"})
	}
}

func isQuit(a testAction) bool { return a.kind == "quit" }

func newTestRuntime() (*Runtime[testState, testAction, testEffect], *recorder) {
	rec := &recorder{}
	return New(testState{}, reduce, rec.translate), rec
}

func runWithin(t *testing.T, r *Runtime[testState, testAction, testEffect], d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Run(ctx, isQuit)
}

func TestRunProcessesInOrderAndStopsAtQuit(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	changes := 0
	r.OnChange(func(*testState) { changes++ })

	for _, k := range []string{"inc", "inc", "noop", "quit", "inc"} {
		require.True(t, r.Enqueue(testAction{kind: k}))
	}
	require.NoError(t, runWithin(t, r, time.Second))

	require.Equal(t, 2, r.State().count)
	require.Equal(t, 2, changes, "OnChange must fire only for declared changes")
	require.Equal(t, 1, r.Pending(), "actions after quit stay queued")
}

func TestEffectsTranslatedInEmissionOrder(t *testing.T) {
	t.Parallel()
	r, rec := newTestRuntime()

	res := r.Process(context.Background(), testAction{kind: "multi"})
	require.True(t, res.Changed)

	var order []int
	for _, e := range rec.effects {
		order = append(order, e.n)
	}
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestTaskResultFlowsBackThroughChannel(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	r.OnChange(func(s *testState) {
		if len(s.results) > 0 {
			r.Enqueue(testAction{kind: "quit"})
		}
	})
	r.Enqueue(testAction{kind: "fetch", n: 42})

	require.NoError(t, runWithin(t, r, 2*time.Second))
	require.Equal(t, []int{42}, r.State().results)
}

func TestDispatchAloneNeverTouchesRegistries(t *testing.T) {
	t.Parallel()
	r, rec := newTestRuntime()

	res := r.store.Dispatch(testAction{kind: "block"})
	require.Len(t, res.Effects, 1)
	require.Empty(t, rec.effects, "translator ran during dispatch")
	require.Zero(t, r.Tasks().Len())
	require.Zero(t, r.Subscriptions().Len())

	r.Process(context.Background(), testAction{kind: "block"})
	require.True(t, r.Tasks().IsRunning("slow"))

	r.shutdown()
	r.Wait()
}

func TestRunExitCancelsAllWork(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	r.Enqueue(testAction{kind: "block"})
	r.Enqueue(testAction{kind: "tick-on"})
	r.Enqueue(testAction{kind: "quit"})
	require.NoError(t, runWithin(t, r, time.Second))

	require.Zero(t, r.Tasks().Len())
	require.Zero(t, r.Subscriptions().Len())

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("work still running after Run returned")
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	errc := make(chan error, 1)
	go func() { errc <- r.Run(context.Background(), isQuit) }()
	require.Eventually(t, r.running.Load, time.Second, time.Millisecond)

	err := r.Run(context.Background(), isQuit)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	r.Close()
	require.NoError(t, <-errc)
}

func TestRunReturnsContextError(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx, isQuit)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCloseDrainsQueuedActions(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	for i := 0; i < 3; i++ {
		r.Enqueue(testAction{kind: "inc"})
	}
	r.Close()
	require.False(t, r.Enqueue(testAction{kind: "inc"}))

	require.NoError(t, runWithin(t, r, time.Second))
	require.Equal(t, 3, r.State().count)
}

func TestEmitQueuesFollowUpAction(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	r.Enqueue(testAction{kind: "emit"})
	r.Enqueue(testAction{kind: "inc"})
	r.OnChange(func(s *testState) {
		if s.count == 2 {
			r.Enqueue(testAction{kind: "quit"})
		}
	})
	require.NoError(t, runWithin(t, r, time.Second))
	require.Equal(t, 2, r.State().count)
}

func TestFreezeHoldsResultsUntilThaw(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	r.Freeze()
	require.True(t, r.Frozen())
	require.True(t, r.Tasks().Paused())
	require.True(t, r.Subscriptions().Paused())

	r.Process(context.Background(), testAction{kind: "fetch", n: 7})
	r.Wait()
	require.Zero(t, r.Pending(), "result delivered while frozen")
	require.Equal(t, 1, r.Tasks().Buffered())

	require.Equal(t, 1, r.Thaw())
	require.False(t, r.Frozen())
	require.Equal(t, 1, r.Pending())
	require.Zero(t, r.Thaw(), "second Thaw must be a no-op")
}

func TestMiddlewareWrapsEveryDispatch(t *testing.T) {
	t.Parallel()
	r, _ := newTestRuntime()

	var seen []string
	r.Use(func(ctx context.Context, s *testState, a testAction, next store.Next[testEffect]) store.Result[testEffect] {
		seen = append(seen, a.kind)
		return next(ctx)
	})
	r.Enqueue(testAction{kind: "inc"})
	r.Enqueue(testAction{kind: "noop"})
	r.Enqueue(testAction{kind: "quit"})
	require.NoError(t, runWithin(t, r, time.Second))

	require.Equal(t, []string{"inc", "noop"}, seen, "quit must not be dispatched")
}

func TestSessionOption(t *testing.T) {
	t.Parallel()
	r := New(testState{}, reduce, nil, WithSession("fixed"))
	require.Equal(t, "fixed", r.Session())

	generated := New(testState{}, reduce, nil)
	require.Len(t, generated.Session(), 36)
}

func TestViewsReportPausePolicies(t *testing.T) {
	t.Parallel()
	r := New(testState{}, reduce, nil,
		WithTaskOptions(tasks.WithPausePolicy(tasks.PauseDrop)),
	)
	require.Equal(t, tasks.PauseDrop, r.Tasks().Policy())
	require.Equal(t, subscriptions.PauseBuffer, r.Subscriptions().Policy())
}
