package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/utils"
)

// PasswordStoreOptions configures NewPasswordStore. Revocations may be nil.
type PasswordStoreOptions struct {
	Accounts          repository.AccountRepository
	Sessions          repository.SessionRepository
	Tokens            TokenIssuer
	Hasher            *utils.PasswordHasher
	Revocations       RevocationCache
	MinPasswordLength int
	Logger            *zap.Logger
}

// passwordStore implements PasswordStore
type passwordStore struct {
	accounts          repository.AccountRepository
	sessions          repository.SessionRepository
	tokens            TokenIssuer
	hasher            *utils.PasswordHasher
	revocations       RevocationCache
	minPasswordLength int
	logger            *zap.Logger
	now               func() time.Time

	// Unknown identifiers are checked against this hash so that a miss
	// costs the same KDF work as a wrong password.
	decoyHash string
	decoySalt string
}

// NewPasswordStore creates a password store
func NewPasswordStore(opts PasswordStoreOptions) (PasswordStore, error) {
	decoyHash, decoySalt, err := opts.Hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare decoy hash: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &passwordStore{
		accounts:          opts.Accounts,
		sessions:          opts.Sessions,
		tokens:            opts.Tokens,
		hasher:            opts.Hasher,
		revocations:       opts.Revocations,
		minPasswordLength: opts.MinPasswordLength,
		logger:            logger,
		now:               time.Now,
		decoyHash:         decoyHash,
		decoySalt:         decoySalt,
	}, nil
}

// CreateAccount registers a new password account
func (s *passwordStore) CreateAccount(ctx context.Context, username, email, password string) (*domain.LocalAccount, error) {
	username = strings.TrimSpace(username)
	email = utils.SanitizeEmail(email)

	if !utils.ValidateUsername(username) {
		return nil, fmt.Errorf("%w: username must be 1-64 letters, digits, '.', '_' or '-'", domain.ErrValidation)
	}
	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if !utils.ValidatePassword(password, s.minPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", domain.ErrValidation, s.minPasswordLength)
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.LocalAccount{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Authenticate checks a username-or-email and password pair and opens a session.
// Unknown accounts and wrong passwords fail identically.
func (s *passwordStore) Authenticate(ctx context.Context, identifier, password string) (*PasswordLogin, error) {
	identifier = utils.NormalizeIdentifier(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(password, s.decoyHash, s.decoySalt)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash, account.Salt) {
		return nil, domain.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	issued, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	session := &domain.Session{
		AccountID:        account.ID,
		TokenFingerprint: fingerprint(issued.Token),
		CreatedAt:        s.now().UTC(),
		ExpiresAt:        issued.ExpiresAt,
		IsActive:         true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	return &PasswordLogin{Token: issued, Account: account}, nil
}

// VerifySession accepts a token only when it verifies and its session row is
// still active and unexpired.
func (s *passwordStore) VerifySession(ctx context.Context, token string) (*domain.LocalAccount, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	fp := fingerprint(token)
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, fp)
		if err != nil {
			s.logger.Warn("revocation cache lookup failed", zap.Error(err))
		} else if revoked {
			return nil, domain.ErrSessionRevoked
		}
	}

	session, err := s.sessions.GetByFingerprint(ctx, fp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.Usable(s.now()) || session.AccountID != claims.SubjectID {
		return nil, domain.ErrSessionRevoked
	}

	account, err := s.accounts.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	return account, nil
}

// InvalidateSession deactivates the session of token. Unknown or already
// inactive sessions are not an error.
func (s *passwordStore) InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	fp := fingerprint(token)
	if err := s.sessions.Deactivate(ctx, fp); err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}

	if s.revocations != nil {
		if err := s.revocations.Revoke(ctx, fp, s.tokens.TTL()); err != nil {
			s.logger.Warn("failed to cache session revocation", zap.Error(err))
		}
	}

	return nil
}

// SetAccountActive toggles an account. Deactivation also ends all of its sessions.
func (s *passwordStore) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if !active {
		if err := s.sessions.DeactivateAllForAccount(ctx, accountID); err != nil {
			return fmt.Errorf("failed to end account sessions: %w", err)
		}
	}

	return nil
}

// fingerprint returns the hex SHA-256 digest stored in place of a token.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
