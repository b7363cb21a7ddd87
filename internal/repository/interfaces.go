package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// UserRepository stores identities established through the provider callback.
type UserRepository interface {
	// Upsert inserts user when no record has its ExternalID, otherwise it
	// overwrites the mutable profile fields, the secret and the timestamps of
	// the existing record. ID, CreatedAt and IsActive of an existing record are
	// kept. The stored record is returned.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// AccountRepository stores password accounts.
type AccountRepository interface {
	// Create fails with domain.ErrDuplicateIdentity when the username or email is taken.
	Create(ctx context.Context, account *domain.LocalAccount) error
	GetByID(ctx context.Context, id string) (*domain.LocalAccount, error)
	// GetByIdentifier matches either the username or the email.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.LocalAccount, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// SessionRepository stores password login sessions keyed by token fingerprint.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Session, error)
	// Deactivate is idempotent. Unknown fingerprints are not an error.
	Deactivate(ctx context.Context, fingerprint string) error
	DeactivateAllForAccount(ctx context.Context, accountID string) error
}
