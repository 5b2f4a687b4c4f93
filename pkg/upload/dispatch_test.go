package upload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueue_RunsInOrderOnRunGoroutine(t *testing.T) {
	q := NewQueue()

	// Not synchronized: the race detector flags any concurrent callback.
	var order []int
	for i := 0; i < 100; i++ {
		i := i
		q.Dispatch(func() { order = append(order, i) })
	}
	q.Close()

	done := make(chan struct{})
	go func() {
		q.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	assert.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestQueue_DropsAfterClose(t *testing.T) {
	q := NewQueue()
	q.Close()

	called := false
	q.Dispatch(func() { called = true })
	q.Run(context.Background())

	assert.False(t, called)
}

func TestQueue_RunStopsOnContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	ran := make(chan struct{})
	q.Dispatch(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run ignored context cancellation")
	}
}

func TestDefaultDispatcher(t *testing.T) {
	d := DefaultDispatcher()
	assert.Same(t, d, DefaultDispatcher())

	ran := make(chan struct{})
	d.Dispatch(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("default dispatcher did not run callback")
	}
}
