package surrogate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
)

const artifactExt = ".srgt"

// FileStore keeps one artifact per domain under a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the artifact location for a domain.
func (s *FileStore) Path(d scenario.Domain) string {
	return filepath.Join(s.dir, string(d)+artifactExt)
}

// Save writes the artifact atomically: a temp file in the same directory is
// renamed over the previous artifact only after a successful flush.
func (s *FileStore) Save(ctx context.Context, m *TrainedModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(m.Domain)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if err := Encode(tmp, m); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(m.Domain)); err != nil {
		return fmt.Errorf("publish artifact %s: %w", m.Domain, err)
	}
	return nil
}

// Load reads and verifies the artifact for a domain.
func (s *FileStore) Load(ctx context.Context, d scenario.Domain) (*TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(d))
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", d, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", d, err)
	}
	if m.Domain != d {
		return nil, fmt.Errorf("load artifact %s: %w: holds domain %s", d, ErrCorruptArtifact, m.Domain)
	}
	return m, nil
}
