package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Persisted collection keys
const (
	KeyHistory = "history"
	KeySaved   = "saved"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Load when a key has never been written
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store. Values are whole serialized
// collections; writes always replace the full value.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Close() error
}

// DefaultDirectory returns ~/.local/state/bomdia
func DefaultDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bomdia")
	}
	return filepath.Join(home, ".local", "state", "bomdia")
}

// Open creates the store for backend rooted at dir
func Open(backend, dir string) (Store, error) {
	if dir == "" {
		dir = DefaultDirectory()
	}

	switch backend {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "bomdia.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
