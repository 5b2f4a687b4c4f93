package upload

import (
	"context"
	"sync"
)

// Slot holds at most one unfinished Task, e.g. for a single drop target.
type Slot struct {
	client *Client

	mu      sync.Mutex
	current *Task
}

// NewSlot creates an empty slot bound to client.
func NewSlot(client *Client) *Slot {
	return &Slot{client: client}
}

// Start cancels the slot's unfinished Task, if any, then starts req. The
// previous Task completes with ErrCanceled.
func (s *Slot) Start(ctx context.Context, req Request, opts ...TaskOption) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.current; prev != nil {
		prev.Cancel()
	}
	s.current = s.client.Start(ctx, req, opts...)
	return s.current
}

// Current returns the most recently started Task, or nil.
func (s *Slot) Current() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel aborts the current Task, if any.
func (s *Slot) Cancel() {
	if t := s.Current(); t != nil {
		t.Cancel()
	}
}
