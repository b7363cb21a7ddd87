package service

import (
	"context"
	"time"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// PasswordStore manages password accounts and their revocable sessions.
type PasswordStore interface {
	CreateAccount(ctx context.Context, username, email, password string) (*domain.LocalAccount, error)
	Authenticate(ctx context.Context, identifier, password string) (*PasswordLogin, error)
	VerifySession(ctx context.Context, token string) (*domain.LocalAccount, error)
	InvalidateSession(ctx context.Context, token string) error
	SetAccountActive(ctx context.Context, accountID string, active bool) error
}

// IdentityResolver manages identities established through the provider callback.
type IdentityResolver interface {
	UpsertFromProvider(ctx context.Context, externalID, secret string, profile domain.ProviderProfile) (*domain.User, error)
	SignIn(ctx context.Context, externalID, secret string, profile domain.ProviderProfile) (*ProviderLogin, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Refresh(ctx context.Context, token string) (*ProviderLogin, error)
	ProviderSecret(ctx context.Context, userID string) (string, error)
	SetUserActive(ctx context.Context, userID string, active bool) error
}

// TokenIssuer signs and verifies session tokens of one family.
type TokenIssuer interface {
	Issue(subjectID string) (domain.IssuedToken, error)
	Verify(token string) (*domain.TokenClaims, error)
	TTL() time.Duration
}

// SecretVault encrypts provider secrets at rest.
type SecretVault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}

// RevocationCache remembers revoked session fingerprints until the token
// would have expired anyway.
type RevocationCache interface {
	Revoke(ctx context.Context, fingerprint string, ttl time.Duration) error
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)
}

// PasswordLogin is the result of a successful password authentication.
type PasswordLogin struct {
	Token   domain.IssuedToken
	Account *domain.LocalAccount
}

// ProviderLogin is the result of a successful provider sign-in or refresh.
type ProviderLogin struct {
	Token domain.IssuedToken
	User  *domain.User
}
