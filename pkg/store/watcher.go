package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/dropship/pkg/log"
	"github.com/bft-labs/dropship/pkg/profile"
)

// ChangeFunc receives the reloaded profile, or the error that prevented
// loading it (ErrNoProfile after the file was removed).
type ChangeFunc func(p *profile.Profile, err error)

// WatcherConfig holds options for Watcher.
type WatcherConfig struct {
	// DebounceDelay is how long the file must be quiet before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultWatcherConfig returns a WatcherConfig with defaults applied.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{DebounceDelay: 100 * time.Millisecond}
}

// Watcher reloads a FileRepository's profile when its file changes.
type Watcher struct {
	repo          *FileRepository
	debounceDelay time.Duration
	logger        log.Logger

	mu       sync.Mutex
	debounce *time.Timer
	notifyMu sync.Mutex
}

// NewWatcher creates a watcher for repo.
func NewWatcher(repo *FileRepository, cfg WatcherConfig, logger log.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultWatcherConfig().DebounceDelay
	}
	return &Watcher{
		repo:          repo,
		debounceDelay: cfg.DebounceDelay,
		logger:        log.OrNoop(logger),
	}
}

// Watch blocks until ctx is done, calling onChange after each settled
// change to the profile file. Calls to onChange never overlap.
func (w *Watcher) Watch(ctx context.Context, onChange ChangeFunc) error {
	dir := filepath.Dir(w.repo.Path())
	name := filepath.Base(w.repo.Path())

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: editors and Import replace the file by rename.
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching profile", log.String("path", w.repo.Path()))

	defer w.stopDebounce()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(ctx, onChange)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("profile watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) scheduleReload(ctx context.Context, onChange ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p, err := w.repo.Load(ctx)

		w.notifyMu.Lock()
		defer w.notifyMu.Unlock()
		if err != nil {
			w.logger.Warn("profile reload failed", log.Err(err))
		} else {
			w.logger.Info("profile reloaded", log.String("name", p.Name()))
		}
		onChange(p, err)
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
