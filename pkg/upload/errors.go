package upload

import (
	"context"
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Client.Upload wraps exactly one of
// these; test with errors.Is.
var (
	// ErrInvalidURL means the profile's request could not be built.
	ErrInvalidURL = errors.New("invalid upload URL")

	// ErrTransport covers connection, DNS, TLS and timeout failures.
	ErrTransport = errors.New("transport error")

	// ErrCanceled means the caller aborted the upload.
	ErrCanceled = errors.New("canceled")

	// ErrServer means the server answered with a non-2xx status.
	ErrServer = errors.New("server error")

	// ErrNoURLFound means a 2xx response carried no recognizable URL.
	ErrNoURLFound = errors.New("no URL found in response")
)

// Error is a classified upload failure.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// StatusCode is the HTTP status, zero when no response arrived.
	StatusCode int

	// Detail is a preview of the response body, or empty.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrServer:
		return fmt.Sprintf("server error: HTTP %d: %s", e.StatusCode, e.Detail)
	case ErrNoURLFound:
		return fmt.Sprintf("unexpected response: %s", e.Detail)
	case ErrCanceled:
		return "canceled"
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprint(e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsCanceled reports whether err is a caller-initiated cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// classifyTransport splits a failed round trip into cancellation and
// transport failure. Only cancellation of ctx counts as a cancel; a
// deadline is a transport timeout.
func classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Kind: ErrCanceled, Err: err}
	}
	return &Error{Kind: ErrTransport, Err: err}
}
