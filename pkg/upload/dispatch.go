package upload

import (
	"context"
	"sync"
)

// Dispatcher runs callbacks on the caller's designated context, such as a
// UI thread. Implementations must run callbacks one at a time, in the order
// they were dispatched.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Queue is an unbounded FIFO Dispatcher drained by Run. Dispatch never
// blocks, so a slow consumer cannot stall the transport.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
}

// NewQueue creates an empty queue. Nothing runs until Run is called.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Dispatch enqueues fn. Callbacks dispatched after Close are dropped.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Run executes queued callbacks on the calling goroutine until ctx is done
// or the queue is closed and drained.
func (q *Queue) Run(ctx context.Context) {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
	}
}

// Close stops accepting callbacks. Run returns once the backlog is drained.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

var (
	defaultQueue     *Queue
	defaultQueueOnce sync.Once
)

// DefaultDispatcher returns a process-wide queue served by one background
// goroutine. It is used when no Dispatcher is configured.
func DefaultDispatcher() Dispatcher {
	defaultQueueOnce.Do(func() {
		defaultQueue = NewQueue()
		go defaultQueue.Run(context.Background())
	})
	return defaultQueue
}
