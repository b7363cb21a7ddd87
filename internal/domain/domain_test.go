package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestProviderProfile_Validate(t *testing.T) {
	p := ProviderProfile{
		Username:    "  ada ",
		Email:       ptr(" ada@example.com "),
		DisplayName: ptr("   "),
		AvatarURL:   ptr("https://avatars.example.com/u/42"),
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, "ada@example.com", *p.Email)
	assert.Nil(t, p.DisplayName)

	invalid := []ProviderProfile{
		{Username: " "},
		{Username: "ada", Email: ptr("not-an-email")},
		{Username: "ada", Email: ptr("Ada Lovelace <ada@example.com>")},
		{Username: "ada", Email: ptr("<ada@example.com>")},
		{Username: "ada", AvatarURL: ptr("javascript:alert(1)")},
		{Username: strings.Repeat("a", maxProfileFieldLength+1)},
	}
	for _, p := range invalid {
		assert.ErrorIs(t, p.Validate(), ErrValidation)
	}
}

func TestValidateExternalID(t *testing.T) {
	id, err := ValidateExternalID(" 12345 ")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)

	_, err = ValidateExternalID("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("login: %w", NewStorageError("get account", cause))

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsExpected(err))
	assert.Contains(t, err.Error(), "get account")
	assert.Nil(t, NewStorageError("noop", nil))
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(ErrInvalidCredentials))
	assert.True(t, IsExpected(fmt.Errorf("wrapped: %w", ErrSessionRevoked)))
	assert.False(t, IsExpected(errors.New("boom")))
	assert.False(t, IsExpected(nil))
}

func TestSession_Usable(t *testing.T) {
	now := time.Now()
	s := Session{IsActive: true, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, s.Usable(now))
	assert.False(t, s.Usable(now.Add(2*time.Minute)))

	s.IsActive = false
	assert.False(t, s.Usable(now))
}
