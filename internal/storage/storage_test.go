package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state", "bomdia.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	stores := map[string]Store{
		BackendFile:   fileStore,
		BackendSQLite: sqliteStore,
		BackendMemory: NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStores_LoadMissing(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(KeyHistory); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStores_SaveAndReplace(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(KeyHistory, []byte(`[{"source":"a"}]`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := store.Save(KeyHistory, []byte(`[{"source":"b"},{"source":"a"}]`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := store.Save(KeySaved, []byte(`[]`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			data, err := store.Load(KeyHistory)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != `[{"source":"b"},{"source":"a"}]` {
				t.Errorf("Load = %s, want full replaced collection", data)
			}

			data, err = store.Load(KeySaved)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != `[]` {
				t.Errorf("Load(saved) = %s", data)
			}
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save(KeySaved, []byte(`[]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected no temporary files left, got %d entries", len(entries))
	}
}

func TestFileStore_InvalidKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save("../escape", []byte("x")); err == nil {
		t.Error("Expected error for invalid key")
	}
	if _, err := store.Load("../escape"); err == nil {
		t.Error("Expected error for invalid key")
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomdia.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Save(KeyHistory, []byte(`[1]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	data, err := store.Load(KeyHistory)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != `[1]` {
		t.Errorf("Load = %s, want [1]", data)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	data := []byte("abc")
	store.Save("k", data)
	data[0] = 'x'

	got, _ := store.Load("k")
	if string(got) != "abc" {
		t.Errorf("Stored value was aliased: %s", got)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"", "*storage.FileStore", false},
		{BackendFile, "*storage.FileStore", false},
		{BackendSQLite, "*storage.SQLiteStore", false},
		{BackendMemory, "*storage.MemoryStore", false},
		{"redis", "", true},
	}

	for _, tt := range tests {
		t.Run("backend_"+tt.backend, func(t *testing.T) {
			store, err := Open(tt.backend, dir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer store.Close()

			if got := typeName(store); got != tt.want {
				t.Errorf("Open(%q) = %s, want %s", tt.backend, got, tt.want)
			}
		})
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *FileStore:
		return "*storage.FileStore"
	case *SQLiteStore:
		return "*storage.SQLiteStore"
	case *MemoryStore:
		return "*storage.MemoryStore"
	default:
		return "unknown"
	}
}
