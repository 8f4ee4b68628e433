// Package tokenstore persists the API bearer token between runs.
package tokenstore

import (
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// EnvVar overrides any persisted token when set.
const EnvVar = "TASKFLOW_TOKEN"

// tokenKey is the single key every backend stores the token under.
const tokenKey = "token"

// Store is a persisted bearer token. An empty token with a nil error means
// nobody is logged in.
type Store interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// MemoryStore keeps the token in memory. Used by tests and by commands that
// run with an env-provided token.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a MemoryStore holding token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: Normalize(token)}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = Normalize(token)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// envOverride reads the token from an environment variable first and falls
// back to the wrapped store.
type envOverride struct {
	Store
	lookup func(string) string
	mu     sync.Mutex
	// cleared suppresses the env token after Clear or Set for the rest of
	// the process.
	cleared bool
}

// WithEnvOverride wraps s so that a non-empty TASKFLOW_TOKEN wins on read.
// Writes always go to s.
func WithEnvOverride(s Store) Store {
	return &envOverride{Store: s, lookup: os.Getenv}
}

func (e *envOverride) Get() (string, error) {
	e.mu.Lock()
	cleared := e.cleared
	e.mu.Unlock()
	if !cleared {
		if env := strings.TrimSpace(e.lookup(EnvVar)); env != "" {
			return Normalize(env), nil
		}
	}
	return e.Store.Get()
}

// Set writes to the wrapped store and suppresses the env token from then
// on, so a fresh login is not shadowed by a variable that was rejected.
func (e *envOverride) Set(token string) error {
	if err := e.Store.Set(token); err != nil {
		return err
	}
	e.mu.Lock()
	e.cleared = true
	e.mu.Unlock()
	return nil
}

func (e *envOverride) Clear() error {
	e.mu.Lock()
	e.cleared = true
	e.mu.Unlock()
	return e.Store.Clear()
}

// Source reports where the current token comes from: "env", "store" or "".
func Source(s Store) string {
	if e, ok := s.(*envOverride); ok {
		e.mu.Lock()
		cleared := e.cleared
		e.mu.Unlock()
		if !cleared && strings.TrimSpace(e.lookup(EnvVar)) != "" {
			return "env"
		}
	}
	if tok, err := s.Get(); err == nil && tok != "" {
		return "store"
	}
	return ""
}

// Normalize trims token and drops a leading "Bearer" scheme, in any case.
// A bare "Bearer" normalizes to "".
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	const scheme = "bearer"
	if len(token) >= len(scheme) && strings.EqualFold(token[:len(scheme)], scheme) {
		rest := token[len(scheme):]
		if rest == "" {
			return ""
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
			return strings.TrimSpace(rest)
		}
	}
	return token
}
