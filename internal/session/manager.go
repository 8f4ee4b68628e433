package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/naveenspark/taskflow/internal/logging"
	"github.com/naveenspark/taskflow/internal/tokenstore"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// TokenStore persists the bearer token.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// UserFetcher loads the user the current token belongs to.
type UserFetcher interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

// Manager owns the session and performs the side effects around each
// transition. It is safe for concurrent use.
type Manager struct {
	tokens TokenStore
	users  UserFetcher
	log    logging.Logger

	mu      sync.Mutex
	s       Session
	gen     uint64 // bumped by every transition that invalidates in-flight fetches
	booted  bool
	bootTok string
}

// NewManager returns a manager in the Unknown state.
func NewManager(tokens TokenStore, users UserFetcher, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		tokens: tokens,
		users:  users,
		log:    log.With("component", "session"),
		s:      Initial(),
	}
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// Bootstrap resolves the persisted token into a session. It fetches the
// user at most once per token value; later calls with an unchanged token
// return the current session.
func (m *Manager) Bootstrap(ctx context.Context) Session {
	token, err := m.tokens.Get()
	if err != nil {
		m.log.Warn(ctx, "read persisted token", "err", err)
		token = ""
	}

	m.mu.Lock()
	if m.booted && m.bootTok == token {
		s := m.s
		m.mu.Unlock()
		return s
	}
	m.booted, m.bootTok = true, token
	m.s = m.s.TokenLoaded(token)
	m.gen++
	gen := m.gen
	s := m.s
	m.mu.Unlock()

	if token == "" {
		m.log.Info(ctx, "no persisted token", "state", s.State)
		return s
	}
	m.log.Debug(ctx, "persisted token found", "state", s.State)
	s, _ = m.resolve(ctx, gen)
	return s
}

// Login persists token and fetches its user with exactly that token, even
// when the store would read back something else. On failure the token is
// cleared and the session is anonymous.
func (m *Manager) Login(ctx context.Context, token string) (Session, error) {
	stored := tokenstore.Normalize(token)
	if stored == "" {
		return m.Current(), fmt.Errorf("session.Login: empty token")
	}
	if err := m.tokens.Set(stored); err != nil {
		return m.Current(), fmt.Errorf("session.Login: %w", err)
	}

	m.mu.Lock()
	m.s = m.s.LoggedIn(stored)
	m.gen++
	gen := m.gen
	m.booted, m.bootTok = true, stored
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "state", Authenticating)
	s, err := m.resolve(ctx, gen)
	if err != nil {
		return s, fmt.Errorf("session.Login: %w", err)
	}
	return s, nil
}

// Logout clears the persisted token and resets the session. No request is
// made to the server.
func (m *Manager) Logout(ctx context.Context) Session {
	if err := m.tokens.Clear(); err != nil {
		m.log.Error(ctx, "clear token on logout", "err", err)
	}
	m.mu.Lock()
	m.s = m.s.LoggedOut()
	m.gen++
	m.bootTok = ""
	s := m.s
	m.mu.Unlock()
	m.log.Info(ctx, "logged out", "state", s.State)
	return s
}

// Expire resets the session after the API rejected the token. The token
// has already been cleared by the client.
func (m *Manager) Expire(ctx context.Context) Session {
	m.mu.Lock()
	m.s = m.s.Expired()
	m.gen++
	m.bootTok = ""
	s := m.s
	m.mu.Unlock()
	m.log.Info(ctx, "session expired", "state", s.State)
	return s
}

// RefreshUser re-fetches the user, keeping the token. A failed refresh
// resets the session.
func (m *Manager) RefreshUser(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if m.s.Token == "" {
		s := m.s
		m.mu.Unlock()
		return s, nil
	}
	gen := m.gen
	m.mu.Unlock()

	s, err := m.resolve(ctx, gen)
	if err != nil {
		return s, fmt.Errorf("session.RefreshUser: %w", err)
	}
	return s, nil
}

// resolve fetches the user and applies the outcome unless another
// transition happened since gen was taken.
func (m *Manager) resolve(ctx context.Context, gen uint64) (Session, error) {
	u, err := m.users.GetMe(ctx)

	m.mu.Lock()
	if m.gen != gen {
		s := m.s
		m.mu.Unlock()
		m.log.Debug(ctx, "discarding superseded user fetch")
		return s, err
	}
	if err != nil {
		m.s = m.s.FetchFailed()
		m.gen++
		m.bootTok = ""
	} else {
		m.s = m.s.UserFetched(u)
	}
	s := m.s
	m.mu.Unlock()

	if err != nil {
		if clearErr := m.tokens.Clear(); clearErr != nil {
			m.log.Error(ctx, "clear token after failed fetch", "err", clearErr)
		}
		m.log.Warn(ctx, "user fetch failed", "err", err, "state", s.State)
		return s, err
	}
	m.log.Info(ctx, "user resolved", "user_id", u.ID, "state", s.State)
	return s, nil
}
