package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/dropship/pkg/profile"
)

type change struct {
	p   *profile.Profile
	err error
}

func startWatcher(t *testing.T, repo *FileRepository) <-chan change {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan change, 16)
	done := make(chan struct{})

	w := NewWatcher(repo, WatcherConfig{DebounceDelay: 20 * time.Millisecond}, nil)
	go func() {
		defer close(done)
		err := w.Watch(ctx, func(p *profile.Profile, err error) {
			changes <- change{p, err}
		})
		assert.NoError(t, err)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return changes
}

func nextChange(t *testing.T, changes <-chan change) change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no profile change observed")
		return change{}
	}
}

func TestWatcher_ReloadsOnImport(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	changes := startWatcher(t, repo)

	_, err := repo.Import(context.Background(), []byte(validProfile))
	require.NoError(t, err)

	c := nextChange(t, changes)
	require.NoError(t, c.err)
	assert.Equal(t, "example", c.p.Name())
}

func TestWatcher_ReportsInvalidEdits(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	changes := startWatcher(t, repo)

	require.NoError(t, os.WriteFile(repo.Path(), []byte(`{"Name":"broken"}`), 0o600))

	c := nextChange(t, changes)
	assert.True(t, errors.Is(c.err, profile.ErrInvalidProfile))
	assert.Nil(t, c.p)
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	_, err := repo.Import(context.Background(), []byte(validProfile))
	require.NoError(t, err)

	changes := startWatcher(t, repo)
	require.NoError(t, repo.Clear(context.Background()))

	c := nextChange(t, changes)
	assert.True(t, errors.Is(c.err, ErrNoProfile))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, DefaultFileName))
	changes := startWatcher(t, repo)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600))

	select {
	case c := <-changes:
		t.Fatalf("unexpected change: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}
