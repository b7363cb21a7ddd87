package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository"
)

// identityResolver implements IdentityResolver
type identityResolver struct {
	users  repository.UserRepository
	vault  SecretVault
	tokens TokenIssuer
	now    func() time.Time
}

// NewIdentityResolver creates an identity resolver
func NewIdentityResolver(users repository.UserRepository, vault SecretVault, tokens TokenIssuer) IdentityResolver {
	return &identityResolver{
		users:  users,
		vault:  vault,
		tokens: tokens,
		now:    time.Now,
	}
}

// UpsertFromProvider creates the user for externalID or refreshes its profile
// and secret. The secret is encrypted again on every call.
func (r *identityResolver) UpsertFromProvider(
	ctx context.Context,
	externalID, secret string,
	profile domain.ProviderProfile,
) (*domain.User, error) {
	externalID, err := domain.ValidateExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	blob, err := r.vault.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt provider secret: %w", err)
	}

	now := r.now().UTC()
	candidate := &domain.User{
		ID:              uuid.New().String(),
		ExternalID:      externalID,
		Username:        profile.Username,
		Email:           profile.Email,
		DisplayName:     profile.DisplayName,
		AvatarURL:       profile.AvatarURL,
		EncryptedSecret: blob,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     &now,
		IsActive:        true,
	}

	user, err := r.users.Upsert(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// SignIn upserts the user and issues a token unless the user is deactivated.
func (r *identityResolver) SignIn(
	ctx context.Context,
	externalID, secret string,
	profile domain.ProviderProfile,
) (*ProviderLogin, error) {
	user, err := r.UpsertFromProvider(ctx, externalID, secret, profile)
	if err != nil {
		return nil, err
	}
	return r.login(user)
}

// CurrentUser resolves the user a token was issued to.
func (r *identityResolver) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	return user, nil
}

// Refresh exchanges a valid token for a new one with a full lifetime.
func (r *identityResolver) Refresh(ctx context.Context, token string) (*ProviderLogin, error) {
	user, err := r.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.login(user)
}

// ProviderSecret returns the decrypted provider secret of a user.
func (r *identityResolver) ProviderSecret(ctx context.Context, userID string) (string, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	secret, err := r.vault.Decrypt(user.EncryptedSecret)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt provider secret: %w", err)
	}
	return secret, nil
}

// SetUserActive toggles the activation gate of a user.
func (r *identityResolver) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := r.users.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *identityResolver) login(user *domain.User) (*ProviderLogin, error) {
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	issued, err := r.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &ProviderLogin{Token: issued, User: user}, nil
}
