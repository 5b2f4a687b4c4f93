package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/dropship/pkg/profile"
)

const validProfile = `{"Name":"example","RequestURL":"https://up.example/api","FutureKey":{"kept":true}}`

func TestFileRepository_LoadMissing(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))

	_, err := repo.Load(context.Background())
	assert.True(t, errors.Is(err, ErrNoProfile))
}

func TestFileRepository_ImportAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	repo := NewFileRepository(path)

	p, err := repo.Import(ctx, []byte(validProfile))
	require.NoError(t, err)
	assert.Equal(t, "example", p.Name())

	// Stored verbatim, unknown keys included.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, validProfile, string(raw))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://up.example/api", loaded.RawRequestURL())
}

func TestFileRepository_ImportRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	_, err := repo.Import(ctx, []byte(validProfile))
	require.NoError(t, err)

	tests := []struct {
		name string
		data string
	}{
		{"not json", `nope`},
		{"missing RequestURL", `{"Name":"x"}`},
		{"relative RequestURL", `{"RequestURL":"/upload"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Import(ctx, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, profile.ErrInvalidProfile))

			// The previous profile survives.
			p, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "example", p.Name())
		})
	}
}

func TestFileRepository_ImportFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sharex.sxcu")
	require.NoError(t, os.WriteFile(src, []byte(validProfile), 0o644))

	repo := NewFileRepository(filepath.Join(dir, "store", DefaultFileName))
	p, err := repo.ImportFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "example", p.Name())

	_, err = repo.ImportFile(context.Background(), filepath.Join(dir, "missing.sxcu"))
	assert.Error(t, err)
}

func TestFileRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))

	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Import(ctx, []byte(validProfile))
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	_, err = repo.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoProfile))
}

func TestFileRepository_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := NewFileRepository(path).Load(context.Background())
	assert.True(t, errors.Is(err, ErrNoProfile))
}
