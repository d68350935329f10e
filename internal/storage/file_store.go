package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var validKey = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// FileStore keeps each key in <dir>/<key>.json
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file used for key
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load reads the value of key
func (f *FileStore) Load(key string) ([]byte, error) {
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("invalid key %q", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save replaces the value of key. The file is written to a temporary
// name first and renamed, so readers never see a partial collection.
func (f *FileStore) Save(key string, data []byte) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file store
func (f *FileStore) Close() error {
	return nil
}
