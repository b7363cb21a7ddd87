package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(100_000)

	hash, salt, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.Len(t, salt, 32)
	assert.Len(t, hash, 64)

	assert.True(t, h.Verify("secret1", hash, salt))
	assert.False(t, h.Verify("secret2", hash, salt))
	assert.False(t, h.Verify("secret1", hash, "00"+salt[2:]))

	otherHash, otherSalt, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, salt, otherSalt)
	assert.NotEqual(t, hash, otherHash)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidateEmail("bob@x.com"))
	assert.False(t, ValidateEmail("bob"))
	assert.False(t, ValidateEmail("bob@x"))

	assert.True(t, ValidateUsername("bob"))
	assert.True(t, ValidateUsername("astro_bio-42"))
	assert.True(t, ValidateUsername("a"))
	assert.False(t, ValidateUsername(""))
	assert.False(t, ValidateUsername("-bob"))
	assert.False(t, ValidateUsername("bob smith"))
	assert.False(t, ValidateUsername("bob@x.com"))

	assert.True(t, ValidatePassword("secret1", 6))
	assert.False(t, ValidatePassword("short", 6))

	assert.Equal(t, "bob@x.com", SanitizeEmail("  Bob@X.com "))
	assert.Equal(t, "bob@x.com", NormalizeIdentifier(" BOB@x.com"))
	assert.Equal(t, "Bob", NormalizeIdentifier(" Bob "))
}
