// Package session tracks who is logged in. Session values change only
// through pure transitions; Manager runs the I/O around them.
package session

import "github.com/naveenspark/taskflow/pkg/domain"

// State is the phase of the session lifecycle.
type State int

const (
	// Unknown is the state before the persisted token has been read.
	Unknown State = iota
	// Anonymous means no token.
	Anonymous
	// Authenticating means a token is set and the user fetch is in flight.
	Authenticating
	// Authenticated means both token and user are known.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the authentication state.
type Session struct {
	State   State
	User    *domain.User
	Token   string
	Loading bool
}

// Initial is the session at process start.
func Initial() Session {
	return Session{State: Unknown, Loading: true}
}

// IsAuthenticated reports whether both a token and a user are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// TokenLoaded applies the token read from storage at startup.
func (s Session) TokenLoaded(token string) Session {
	if token == "" {
		return Session{State: Anonymous}
	}
	return Session{State: Authenticating, Token: token, Loading: true}
}

// LoggedIn applies a token freshly issued by login or register.
func (s Session) LoggedIn(token string) Session {
	if token == "" {
		return Session{State: Anonymous}
	}
	return Session{State: Authenticating, Token: token, Loading: s.Loading}
}

// UserFetched applies a successful /users/me response. It is a no-op when
// no token is held, so a late response cannot resurrect a closed session.
func (s Session) UserFetched(u *domain.User) Session {
	if u == nil {
		return s.FetchFailed()
	}
	if s.Token == "" {
		return s
	}
	return Session{State: Authenticated, Token: s.Token, User: u}
}

// FetchFailed resets to anonymous after the user could not be fetched.
func (s Session) FetchFailed() Session {
	return Session{State: Anonymous}
}

// LoggedOut resets to anonymous on user request.
func (s Session) LoggedOut() Session {
	return Session{State: Anonymous}
}

// Expired resets to anonymous after the server rejected the token.
func (s Session) Expired() Session {
	return Session{State: Anonymous}
}
