package dropship

import (
	"net/url"
	"time"
)

// EventHandler receives upload events. Start is reported synchronously
// from UploadFile; the others run on the client's Dispatcher.
type EventHandler interface {
	OnStart(e StartEvent)
	OnProgress(e ProgressEvent)
	OnSuccess(e SuccessEvent)
	OnFailure(e FailureEvent)
}

// StartEvent is emitted once an upload has been handed to the slot.
type StartEvent struct {
	Filename string
	Size     int64
	Profile  string
}

// ProgressEvent carries the fraction of the request body sent so far.
type ProgressEvent struct {
	Filename string
	Fraction float64
}

// SuccessEvent carries the resolved link.
type SuccessEvent struct {
	Filename string
	URL      *url.URL
	Duration time.Duration
}

// FailureEvent carries the upload error. Canceled is set when the upload
// was aborted by the caller or replaced by a newer one.
type FailureEvent struct {
	Filename string
	Err      error
	Canceled bool
	Duration time.Duration
}

// EventHandlerFuncs adapts optional functions to EventHandler. Nil fields
// are skipped.
type EventHandlerFuncs struct {
	Start    func(StartEvent)
	Progress func(ProgressEvent)
	Success  func(SuccessEvent)
	Failure  func(FailureEvent)
}

func (h EventHandlerFuncs) OnStart(e StartEvent) {
	if h.Start != nil {
		h.Start(e)
	}
}

func (h EventHandlerFuncs) OnProgress(e ProgressEvent) {
	if h.Progress != nil {
		h.Progress(e)
	}
}

func (h EventHandlerFuncs) OnSuccess(e SuccessEvent) {
	if h.Success != nil {
		h.Success(e)
	}
}

func (h EventHandlerFuncs) OnFailure(e FailureEvent) {
	if h.Failure != nil {
		h.Failure(e)
	}
}

var _ EventHandler = EventHandlerFuncs{}
