package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the token in a single owner-only file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return Normalize(string(data)), nil
}

func (f *FileStore) Set(token string) error {
	token = Normalize(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
