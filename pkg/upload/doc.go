// Package upload performs a single file upload described by a ShareX
// server profile and returns the hosted URL.
//
// Client.Upload is the blocking form: cancel it through its context.
// Client.Start runs the same upload as a Task, handing back the cancel
// handle before any network I/O begins. A Slot keeps at most one Task
// alive per drop target, canceling the previous one when a new file
// arrives.
//
// Progress and completion callbacks never run on transport goroutines.
// They are posted to a Dispatcher, which serializes them onto whatever
// context the caller designates (a Queue drained by the UI loop, for
// example).
//
// Failures are classified as ErrInvalidURL, ErrTransport, ErrCanceled,
// ErrServer or ErrNoURLFound. Nothing is retried.
package upload
