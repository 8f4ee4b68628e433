package tokenstore

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the part of a bearer token the CLI shows to the user.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token's exp is in the past at now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Claims decodes the registered claims of a JWT without verifying its
// signature. The server stays the only authority on validity.
func Claims(token string) (TokenClaims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(Normalize(token), &rc); err != nil {
		return TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}
	out := TokenClaims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}
