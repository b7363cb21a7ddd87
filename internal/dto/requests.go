package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// SignupRequest represents a password account registration
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a password login. Identifier may be a username or an email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
}

// LoginIdentifier returns the first identifier field that was supplied.
func (r LoginRequest) LoginIdentifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

// ExternalID accepts a provider account id sent either as a JSON number or a string.
type ExternalID string

func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ExternalID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("external id must be a string or a number: %w", err)
	}
	*id = ExternalID(n.String())
	return nil
}

// OAuthCallbackRequest is the payload the frontend forwards after the provider redirect
type OAuthCallbackRequest struct {
	GithubID    ExternalID `json:"github_id" binding:"required"`
	Username    string     `json:"username" binding:"required"`
	Email       *string    `json:"email"`
	Name        *string    `json:"name"`
	AvatarURL   *string    `json:"avatar_url"`
	AccessToken string     `json:"access_token"`
}

// Profile converts the request into a provider profile
func (r OAuthCallbackRequest) Profile() domain.ProviderProfile {
	return domain.ProviderProfile{
		Username:    r.Username,
		Email:       r.Email,
		DisplayName: r.Name,
		AvatarURL:   r.AvatarURL,
	}
}

// AccountResponse represents a password account
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// NewAccountResponse builds an AccountResponse without credential fields
func NewAccountResponse(a *domain.LocalAccount) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		IsActive:  a.IsActive,
	}
}

// UserResponse represents a provider user
type UserResponse struct {
	ID          string     `json:"id"`
	GithubID    string     `json:"github_id"`
	Username    string     `json:"username"`
	Email       *string    `json:"email"`
	Name        *string    `json:"name"`
	AvatarURL   *string    `json:"avatar_url"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
	IsActive    bool       `json:"is_active"`
}

// NewUserResponse builds a UserResponse. The encrypted secret is never included.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		GithubID:    u.ExternalID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		IsActive:    u.IsActive,
	}
}

// LoginResponse represents a password login response
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Account     AccountResponse `json:"account"`
}

// OAuthResponse represents a provider sign-in or refresh response
type OAuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
