package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/dropship/pkg/profile"
)

// DefaultFileName is the profile file name inside the config directory.
const DefaultFileName = "profile.json"

// ErrNoProfile is returned when no profile has been imported.
var ErrNoProfile = errors.New("store: no server profile configured")

// Repository supplies and persists the active profile.
type Repository interface {
	// Load returns the stored profile, or ErrNoProfile.
	Load(ctx context.Context) (*profile.Profile, error)

	// Import validates data and, only if valid, stores it.
	Import(ctx context.Context, data []byte) (*profile.Profile, error)

	// Clear removes the stored profile. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// FileRepository implements Repository with a single JSON file.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository backed by path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the profile file path.
func (r *FileRepository) Path() string {
	return r.path
}

// LoadRaw returns the stored JSON text.
func (r *FileRepository) LoadRaw(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoProfile
	}
	return data, nil
}

// Load reads and parses the stored profile.
func (r *FileRepository) Load(ctx context.Context) (*profile.Profile, error) {
	data, err := r.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}
	p, err := profile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.path, err)
	}
	return p, nil
}

// Import validates data and atomically replaces the stored profile. An
// invalid profile leaves the current one untouched.
func (r *FileRepository) Import(ctx context.Context, data []byte) (*profile.Profile, error) {
	p, err := profile.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := r.save(data); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// ImportFile imports the profile stored at src.
func (r *FileRepository) ImportFile(ctx context.Context, src string) (*profile.Profile, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return r.Import(ctx, data)
}

// Clear removes the stored profile.
func (r *FileRepository) Clear(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

func (r *FileRepository) save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

var _ Repository = (*FileRepository)(nil)
