package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nash-team/bookforge/internal/generation"
)

// FileSystem stores artifacts and previews on local disk, implementing the
// file storage port. Files live flat under baseDir; the file name doubles
// as the storage id. Optional metadata is kept in a JSON sidecar next to
// the file.
type FileSystem struct {
	baseDir string
}

// NewFileSystem creates the store, ensuring the base directory exists.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileSystem{baseDir: baseDir}, nil
}

// Path returns the absolute path for a stored file id.
func (f *FileSystem) Path(id string) string {
	return filepath.Join(f.baseDir, id)
}

// Store writes data under filename and returns its descriptor.
func (f *FileSystem) Store(ctx context.Context, data []byte, filename string, metadata map[string]string) (generation.StoredFile, error) {
	path := f.Path(filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return generation.StoredFile{}, fmt.Errorf("writing %s: %w", filename, err)
	}

	if len(metadata) > 0 {
		meta, err := json.Marshal(metadata)
		if err != nil {
			return generation.StoredFile{}, fmt.Errorf("encoding metadata for %s: %w", filename, err)
		}
		if err := os.WriteFile(path+".meta.json", meta, 0644); err != nil {
			return generation.StoredFile{}, fmt.Errorf("writing metadata for %s: %w", filename, err)
		}
	}

	return generation.StoredFile{
		ID:       filename,
		URL:      "file://" + path,
		Size:     int64(len(data)),
		Metadata: metadata,
	}, nil
}

// GetFileInfo returns the descriptor for a stored file id.
func (f *FileSystem) GetFileInfo(ctx context.Context, id string) (generation.StoredFile, error) {
	path := f.Path(id)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return generation.StoredFile{}, fmt.Errorf("file %s: %w", id, ErrNotFound)
		}
		return generation.StoredFile{}, fmt.Errorf("stat %s: %w", id, err)
	}

	stored := generation.StoredFile{
		ID:   id,
		URL:  "file://" + path,
		Size: info.Size(),
	}

	if meta, err := os.ReadFile(path + ".meta.json"); err == nil {
		_ = json.Unmarshal(meta, &stored.Metadata)
	}

	return stored, nil
}

// Read returns the raw bytes of a stored file.
func (f *FileSystem) Read(id string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return data, nil
}

// IsAvailable reports whether the base directory is usable.
func (f *FileSystem) IsAvailable() bool {
	info, err := os.Stat(f.baseDir)
	return err == nil && info.IsDir()
}
