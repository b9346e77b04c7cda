package actions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChannelPreservesOrder(t *testing.T) {
	c := NewChannel[int]()
	for i := 0; i < 100; i++ {
		if !c.Send(i) {
			t.Fatalf("Send(%d) rejected on open channel", i)
		}
	}
	ctx := context.Background()
	for want := 0; want < 100; want++ {
		got, err := c.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != want {
			t.Fatalf("Recv()=%d, want %d", got, want)
		}
	}
}

func TestChannelRecvBlocksUntilSend(t *testing.T) {
	c := NewChannel[string]()
	done := make(chan string, 1)
	go func() {
		a, err := c.Recv(context.Background())
		if err != nil {
			done <- "err:" + err.Error()
			return
		}
		done <- a
	}()

	select {
	case got := <-done:
		t.Fatalf("Recv returned early with %q", got)
	case <-time.After(20 * time.Millisecond):
	}

	c.Send("hello")
	select {
	case got := <-done:
		if got != "hello" {
			t.Fatalf("Recv()=%q, want hello", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not wake after Send")
	}
}

func TestChannelRecvHonoursContext(t *testing.T) {
	c := NewChannel[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Recv err=%v, want deadline exceeded", err)
	}
}

func TestChannelCloseDrainsThenErrors(t *testing.T) {
	c := NewChannel[int]()
	c.Send(1)
	c.Close()
	if c.Send(2) {
		t.Fatal("Send after Close accepted")
	}
	got, err := c.Recv(context.Background())
	if err != nil || got != 1 {
		t.Fatalf("Recv()=(%d, %v), want (1, nil)", got, err)
	}
	if _, err := c.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Recv err=%v, want ErrClosed", err)
	}
}

func TestChannelConcurrentProducers(t *testing.T) {
	c := NewChannel[int]()
	const producers, per = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				c.Send(i)
			}
		}()
	}
	wg.Wait()
	if got := c.Len(); got != producers*per {
		t.Fatalf("Len()=%d, want %d", got, producers*per)
	}
	if got := len(c.Drain()); got != producers*per {
		t.Fatalf("Drain() returned %d, want %d", got, producers*per)
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("Len()=%d after Drain, want 0", got)
	}
}
