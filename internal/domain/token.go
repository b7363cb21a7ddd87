package domain

import "time"

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	SubjectID string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a freshly signed token together with its absolute expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime in whole seconds.
func (t IssuedToken) ExpiresIn(now time.Time) int {
	if remaining := t.ExpiresAt.Sub(now); remaining > 0 {
		return int(remaining.Seconds())
	}
	return 0
}
