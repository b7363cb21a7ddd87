package domain

import "time"

// User is an identity established through the third-party provider callback.
type User struct {
	ID              string     `json:"id" db:"id"`
	ExternalID      string     `json:"external_id" db:"external_id"`
	Username        string     `json:"username" db:"username"`
	Email           *string    `json:"email,omitempty" db:"email"`
	DisplayName     *string    `json:"name,omitempty" db:"name"`
	AvatarURL       *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	EncryptedSecret string     `json:"-" db:"encrypted_secret"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at" db:"last_login_at"`
	IsActive        bool       `json:"is_active" db:"is_active"`
}

// LocalAccount is a password-based identity. Its namespace is independent of User.
type LocalAccount struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Session records a password login. Only the token fingerprint is kept.
type Session struct {
	ID               string    `json:"id" db:"id"`
	AccountID        string    `json:"account_id" db:"account_id"`
	TokenFingerprint string    `json:"-" db:"token_fingerprint"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at"`
	IsActive         bool      `json:"is_active" db:"is_active"`
}

// Usable reports whether the session can still authenticate requests at now.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
