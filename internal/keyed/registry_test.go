package keyed

import (
	"reflect"
	"sync"
	"testing"
)

type recordSink struct {
	mu  sync.Mutex
	got []string
}

func (s *recordSink) Send(a string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, a)
	return true
}

func (s *recordSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestRegisterReplacesAndRevokesOldGeneration(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)

	ctx1, g1 := r.Register("search")
	_, g2 := r.Register("search")

	if ctx1.Err() == nil {
		t.Fatal("old handle context not cancelled on replacement")
	}
	if g1 == g2 {
		t.Fatalf("generations collide: %d", g1)
	}
	if r.Deliver("search", g1, "stale") {
		t.Fatal("stale generation accepted")
	}
	if !r.Deliver("search", g2, "fresh") {
		t.Fatal("live generation rejected")
	}
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Fatalf("sink=%v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", r.Len())
	}
}

func TestCompleteRetiresHandle(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	ctx, g := r.Register("fetch")
	if !r.Complete("fetch", g, "done") {
		t.Fatal("Complete rejected live generation")
	}
	if r.Contains("fetch") {
		t.Fatal("handle still live after Complete")
	}
	if ctx.Err() == nil {
		t.Fatal("context not released after Complete")
	}
	if r.Complete("fetch", g, "again") {
		t.Fatal("second Complete accepted")
	}
}

func TestCancelDropsLateDelivery(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	_, g := r.Register("weather")
	if !r.Cancel("weather") {
		t.Fatal("Cancel reported no handle")
	}
	if r.Cancel("weather") {
		t.Fatal("second Cancel reported a handle")
	}
	if r.Deliver("weather", g, "late") {
		t.Fatal("delivery after Cancel accepted")
	}
	if len(sink.snapshot()) != 0 {
		t.Fatalf("sink=%v, want empty", sink.snapshot())
	}
}

func TestPauseBufferFlushesInOrder(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	_, ga := r.Register("a")
	_, gb := r.Register("b")

	r.Pause()
	r.Deliver("a", ga, "a1")
	r.Deliver("b", gb, "b1")
	r.Deliver("a", ga, "a2")
	if len(sink.snapshot()) != 0 {
		t.Fatalf("delivered while paused: %v", sink.snapshot())
	}
	if r.Buffered() != 3 {
		t.Fatalf("Buffered()=%d, want 3", r.Buffered())
	}
	if n := r.Resume(); n != 3 {
		t.Fatalf("Resume()=%d, want 3", n)
	}
	want := []string{"a1", "b1", "a2"}
	if got := sink.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sink=%v, want %v", got, want)
	}
	if r.Resume() != 0 {
		t.Fatal("Resume on running registry flushed something")
	}
}

func TestPauseDropPolicy(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseDrop)
	_, g := r.Register("tick")
	r.Pause()
	if r.Deliver("tick", g, "t1") {
		t.Fatal("drop policy accepted delivery while paused")
	}
	if r.Resume() != 0 {
		t.Fatal("drop policy buffered something")
	}
	r.Deliver("tick", g, "t2")
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"t2"}) {
		t.Fatalf("sink=%v", got)
	}
}

func TestCancelPurgesBufferedForKeyOnly(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	_, ga := r.Register("a")
	_, gb := r.Register("b")
	r.Pause()
	r.Deliver("a", ga, "a1")
	r.Deliver("b", gb, "b1")
	r.Cancel("a")
	r.Resume()
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Fatalf("sink=%v, want [b1]", got)
	}
}

func TestReplacementPurgesBufferedResult(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	_, g1 := r.Register("search")
	r.Pause()
	r.Complete("search", g1, "old")
	_, g2 := r.Register("search")
	r.Complete("search", g2, "new")
	r.Resume()
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"new"}) {
		t.Fatalf("sink=%v, want [new]", got)
	}
}

func TestReplacementKeepsFinishedResultsUnderSameKey(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	r.Pause()
	_, g1 := r.Register("k")
	r.Complete("k", g1, "first")
	_, g2 := r.Register("k")
	r.Deliver("k", g2, "superseded")
	_, g3 := r.Register("k")
	r.Complete("k", g3, "third")
	if n := r.Resume(); n != 2 {
		t.Fatalf("Resume()=%d, want 2", n)
	}
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"first", "third"}) {
		t.Fatalf("sink=%v, want [first third]", got)
	}
}

func TestCancelKeepsFinishedResultsUnderSameKey(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	r.Pause()
	_, g1 := r.Register("k")
	r.Complete("k", g1, "first")
	_, g2 := r.Register("k")
	r.Deliver("k", g2, "cancelled")
	if !r.Cancel("k") {
		t.Fatal("Cancel reported no live handle")
	}
	if r.Cancel("k") {
		t.Fatal("second Cancel reported a live handle")
	}
	r.Resume()
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"first"}) {
		t.Fatalf("sink=%v, want [first]", got)
	}
}

func TestRetiredStreamResultsSurviveLaterCancel(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	r.Pause()
	_, g1 := r.Register("feed")
	r.Deliver("feed", g1, "a")
	r.Deliver("feed", g1, "b")
	r.Retire("feed", g1)
	r.Register("feed")
	r.Cancel("feed")
	r.Resume()
	if got := sink.snapshot(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("sink=%v, want [a b]", got)
	}
}

func TestCancelAllClearsEverything(t *testing.T) {
	sink := &recordSink{}
	r := New[string]("test", sink, nil, PauseBuffer)
	_, ga := r.Register("a")
	_, gb := r.Register("b")
	r.Pause()
	r.Deliver("a", ga, "a1")
	r.CancelAll()
	r.Deliver("b", gb, "b1")
	r.Resume()
	if r.Len() != 0 || len(sink.snapshot()) != 0 {
		t.Fatalf("Len()=%d sink=%v after CancelAll", r.Len(), sink.snapshot())
	}
}

func TestKeysSorted(t *testing.T) {
	r := New[string]("test", &recordSink{}, nil, PauseBuffer)
	for _, k := range []string{"weather", "city_search", "refresh"} {
		r.Register(k)
	}
	want := []string{"city_search", "refresh", "weather"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys()=%v, want %v", got, want)
	}
}

func TestParsePausePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PausePolicy
		wantErr bool
	}{
		{in: "", want: PauseBuffer},
		{in: "buffer", want: PauseBuffer},
		{in: " DROP ", want: PauseDrop},
		{in: "defer", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePausePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePausePolicy(%q) err=%v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParsePausePolicy(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConcurrentRegisterKeepsSingleOwner(t *testing.T) {
	r := New[string]("test", &recordSink{}, nil, PauseBuffer)
	var wg sync.WaitGroup
	gens := make(chan Gen, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, g := r.Register("k")
			gens <- g
		}()
	}
	wg.Wait()
	close(gens)

	live := 0
	for g := range gens {
		if r.Deliver("k", g, "x") {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("%d generations believe they own the key, want 1", live)
	}
}
