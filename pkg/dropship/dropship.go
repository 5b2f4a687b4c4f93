package dropship

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/docker/go-units"

	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
	"github.com/bft-labs/dropship/pkg/store"
	"github.com/bft-labs/dropship/pkg/upload"
)

// Dropship uploads files to the configured server profile, one at a time.
type Dropship struct {
	client  *upload.Client
	slot    *upload.Slot
	repo    store.Repository
	logger  log.Logger
	handler EventHandler

	mu      sync.RWMutex
	profile *profile.Profile
}

// New creates a Dropship. Without WithRepository or WithProfile every
// upload fails with store.ErrNoProfile.
func New(opts ...Option) *Dropship {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.OrNoop(o.logger)

	clientOpts := []upload.Option{upload.WithLogger(logger)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, upload.WithHTTPClient(o.httpClient))
	}
	if o.dispatcher != nil {
		clientOpts = append(clientOpts, upload.WithDispatcher(o.dispatcher))
	}
	client := upload.NewClient(clientOpts...)

	return &Dropship{
		client:  client,
		slot:    upload.NewSlot(client),
		repo:    o.repo,
		logger:  logger,
		handler: o.eventHandler,
		profile: o.profile,
	}
}

// SetProfile replaces the pinned profile. Passing nil falls back to the
// repository.
func (d *Dropship) SetProfile(p *profile.Profile) {
	d.mu.Lock()
	d.profile = p
	d.mu.Unlock()
}

// Profile returns the pinned profile, or loads it from the repository.
func (d *Dropship) Profile(ctx context.Context) (*profile.Profile, error) {
	d.mu.RLock()
	p := d.profile
	d.mu.RUnlock()
	if p != nil {
		return p, nil
	}
	if d.repo == nil {
		return nil, store.ErrNoProfile
	}
	return d.repo.Load(ctx)
}

// UploadFile reads path and uploads its contents under its base name. An
// unreadable file or missing profile is reported before anything starts.
func (d *Dropship) UploadFile(ctx context.Context, path string) (*upload.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d.Upload(ctx, filepath.Base(path), data)
}

// Upload starts an upload of data named filename, cancelling any upload
// still in flight.
func (d *Dropship) Upload(ctx context.Context, filename string, data []byte) (*upload.Task, error) {
	p, err := d.Profile(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings() {
		d.logger.Warn("server profile", log.String("warning", w), log.String("profile", p.Name()))
	}

	d.logger.Info("upload started",
		log.String("file", filename),
		log.String("size", units.HumanSize(float64(len(data)))),
		log.String("profile", p.Name()))
	if d.handler != nil {
		d.handler.OnStart(StartEvent{Filename: filename, Size: int64(len(data)), Profile: p.Name()})
	}

	started := time.Now()
	req := upload.Request{Profile: p, Filename: filename, Data: data}
	task := d.slot.Start(ctx, req,
		upload.OnProgress(func(f float64) { d.progress(filename, f) }),
		upload.OnComplete(func(u *url.URL, err error) { d.complete(filename, started, u, err) }),
	)
	return task, nil
}

// Current returns the most recent upload, or nil.
func (d *Dropship) Current() *upload.Task {
	return d.slot.Current()
}

// Cancel aborts the upload in flight, if any.
func (d *Dropship) Cancel() {
	d.slot.Cancel()
}

func (d *Dropship) progress(filename string, f float64) {
	if d.handler != nil {
		d.handler.OnProgress(ProgressEvent{Filename: filename, Fraction: f})
	}
}

func (d *Dropship) complete(filename string, started time.Time, u *url.URL, err error) {
	elapsed := time.Since(started)
	switch {
	case err == nil:
		d.logger.Info("upload finished",
			log.String("file", filename),
			log.String("url", u.String()),
			log.Duration("elapsed", elapsed))
		if d.handler != nil {
			d.handler.OnSuccess(SuccessEvent{Filename: filename, URL: u, Duration: elapsed})
		}
	default:
		canceled := upload.IsCanceled(err)
		if canceled {
			d.logger.Info("upload canceled", log.String("file", filename))
		} else {
			d.logger.Error("upload failed", log.String("file", filename), log.Err(err))
		}
		if d.handler != nil {
			d.handler.OnFailure(FailureEvent{Filename: filename, Err: err, Canceled: canceled, Duration: elapsed})
		}
	}
}
