package upload

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/bft-labs/dropship/pkg/log"
)

// State is the lifecycle state of a Task.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCanceled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	case StateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCanceled
}

// ErrInvalidTransition is returned for a state change the lifecycle forbids.
var ErrInvalidTransition = errors.New("upload: invalid task state transition")

// CompleteFunc receives the outcome of a Task.
type CompleteFunc func(u *url.URL, err error)

// TaskOption configures a Task started by Client.Start.
type TaskOption func(*Task)

// OnProgress registers a progress callback, run through the Dispatcher.
func OnProgress(fn ProgressFunc) TaskOption {
	return func(t *Task) {
		t.onProgress = fn
	}
}

// OnComplete registers a completion callback, run through the Dispatcher
// after every progress callback of the same Task.
func OnComplete(fn CompleteFunc) TaskOption {
	return func(t *Task) {
		t.onComplete = fn
	}
}

// Task is an in-flight upload and its cancel handle.
type Task struct {
	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	progress chan float64
	closed   bool
	url      *url.URL
	err      error

	dispatcher Dispatcher
	onProgress ProgressFunc
	onComplete CompleteFunc
}

// Start begins req in the background and returns its Task at once, before
// any network call is issued.
func (c *Client) Start(ctx context.Context, req Request, opts ...TaskOption) *Task {
	runCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		state:      StatePending,
		cancel:     cancel,
		done:       make(chan struct{}),
		progress:   make(chan float64, 1),
		dispatcher: c.dispatcher,
	}
	for _, opt := range opts {
		opt(t)
	}

	go func() {
		defer cancel()
		t.markRunning(c.logger)
		u, err := c.upload(runCtx, req, newProgressMeter(t.reportProgress))
		t.finish(u, err)
	}()

	return t
}

// Cancel aborts the upload. The Task completes with ErrCanceled unless it
// already finished. Safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the Task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Progress streams the latest progress fraction. Slow readers see only the
// most recent value. The channel is closed when the Task completes.
func (t *Task) Progress() <-chan float64 {
	return t.progress
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Wait blocks until the Task completes or ctx is done. A done ctx only
// stops the wait; it does not cancel the Task.
func (t *Task) Wait(ctx context.Context) (*url.URL, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome, or ErrNotDone while the Task is running.
func (t *Task) Result() (*url.URL, error) {
	select {
	case <-t.done:
	default:
		return nil, ErrNotDone
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url, t.err
}

// ErrNotDone is returned by Result before the Task completes.
var ErrNotDone = errors.New("upload: task not done")

func (t *Task) transitionTo(next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !canTransition(t.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, next)
	}
	t.state = next
	return nil
}

// markRunning moves a Pending task to Running. A refused transition is
// logged; finish still decides the terminal state.
func (t *Task) markRunning(logger log.Logger) {
	if err := t.transitionTo(StateRunning); err != nil {
		logger.Error("upload task lifecycle", log.Err(err))
	}
}

// canTransition encodes the lifecycle: Pending -> Running -> one terminal
// state.
func canTransition(cur, next State) bool {
	switch cur {
	case StatePending:
		return next == StateRunning
	case StateRunning:
		return next.Terminal()
	}
	return false
}

func (t *Task) reportProgress(f float64) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	// Keep only the newest value for slow readers.
	select {
	case <-t.progress:
	default:
	}
	t.progress <- f
	t.mu.Unlock()

	if t.onProgress != nil {
		fn := t.onProgress
		t.dispatcher.Dispatch(func() { fn(f) })
	}
}

func (t *Task) finish(u *url.URL, err error) {
	next := StateSucceeded
	switch {
	case IsCanceled(err):
		next = StateCanceled
	case err != nil:
		next = StateFailed
	}

	t.mu.Lock()
	if !canTransition(t.state, next) {
		t.mu.Unlock()
		return
	}
	t.state = next
	t.url, t.err = u, err
	t.closed = true
	close(t.progress)
	close(t.done)
	t.mu.Unlock()

	if t.onComplete != nil {
		fn := t.onComplete
		t.dispatcher.Dispatch(func() { fn(u, err) })
	}
}
