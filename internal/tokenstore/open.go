package tokenstore

import (
	"fmt"
	"io"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the store for backend rooted at dataDir, wrapped with the
// TASKFLOW_TOKEN override. The closer releases backend resources.
func Open(backend, dataDir string) (Store, io.Closer, error) {
	switch backend {
	case "", BackendFile:
		return WithEnvOverride(NewFileStore(filepath.Join(dataDir, "token"))), nopCloser{}, nil
	case BackendSQLite:
		s, err := OpenSQLite(filepath.Join(dataDir, "taskflow.db"))
		if err != nil {
			return nil, nil, err
		}
		return WithEnvOverride(s), s, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", backend)
	}
}
