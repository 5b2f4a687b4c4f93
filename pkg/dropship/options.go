package dropship

import (
	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
	"github.com/bft-labs/dropship/pkg/store"
	"github.com/bft-labs/dropship/pkg/upload"
)

// Option configures optional behavior of Dropship.
type Option func(*options)

type options struct {
	httpClient   upload.HTTPClient
	logger       log.Logger
	dispatcher   upload.Dispatcher
	eventHandler EventHandler
	repo         store.Repository
	profile      *profile.Profile
}

// WithHTTPClient sets the HTTP client used for uploads.
// If not provided, a zero-value *http.Client is used.
func WithHTTPClient(client upload.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDispatcher sets where event handler calls run.
// If not provided, upload.DefaultDispatcher is used.
func WithDispatcher(d upload.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithEventHandler sets a handler for upload events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithRepository sets the profile store consulted on each upload.
func WithRepository(repo store.Repository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithProfile pins a profile. It takes precedence over the repository
// until replaced with SetProfile.
func WithProfile(p *profile.Profile) Option {
	return func(o *options) {
		o.profile = p
	}
}
