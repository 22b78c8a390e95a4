package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundprediction/kgreason/pkg/types"
)

// DefaultPath is used when no storage path is configured.
const DefaultPath = "knowledge_base.json"

// FileStore keeps the snapshot in a single JSON or YAML file.
type FileStore struct {
	path   string
	format Format
}

// NewFileStore creates a file store at path. The parent directory is created if needed.
func NewFileStore(path string, format Format) (*FileStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	return &FileStore{path: path, format: format}, nil
}

// Location returns the snapshot file path.
func (s *FileStore) Location() string {
	return s.path
}

// Save writes the snapshot to a temporary file, syncs it, and renames it over the
// previous snapshot.
func (s *FileStore) Save(ctx context.Context, snap *types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(snap, s.format)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// Load reads and validates the snapshot file.
func (s *FileStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return Unmarshal(data, s.format)
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes data next to path and renames it into place. The temporary
// file is always closed and removed on failure.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}
