package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordSaltSize = 16
	passwordKeySize  = 32
)

// PasswordHasher derives PBKDF2-SHA256 password hashes with a per-account salt.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher returns a hasher using the given iteration count.
func NewPasswordHasher(iterations int) *PasswordHasher {
	return &PasswordHasher{iterations: iterations}
}

// Hash returns the hex encoded hash and the hex encoded random salt.
func (h *PasswordHasher) Hash(password string) (hash, salt string, err error) {
	raw := make([]byte, passwordSaltSize)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return h.derive(password, salt), salt, nil
}

// Verify compares password against a stored hash in constant time.
func (h *PasswordHasher) Verify(password, hash, salt string) bool {
	derived := h.derive(password, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(hash)) == 1
}

func (h *PasswordHasher) derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, passwordKeySize, sha256.New)
	return hex.EncodeToString(key)
}
