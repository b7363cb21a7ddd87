// Package vault encrypts third-party secrets before they are persisted.
//
// Every call to Encrypt draws a fresh salt, derives a key from the master
// secret and that salt, and seals the value with AES-256-GCM. The blob is
// base64url(salt || nonce || ciphertext+tag), so decryption needs nothing
// but the master secret.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

const (
	SaltSize      = 16
	KeySize       = 32
	MinIterations = 100_000
)

var encoding = base64.URLEncoding

// Vault is safe for concurrent use. It holds no state besides the master secret.
type Vault struct {
	masterSecret []byte
	iterations   int
	random       io.Reader
}

// New builds a vault. An empty master secret is a configuration error.
func New(masterSecret string, iterations int) (*Vault, error) {
	if masterSecret == "" {
		return nil, errors.New("vault master secret is required")
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("vault kdf iterations must be at least %d, got %d", MinIterations, iterations)
	}
	return &Vault{
		masterSecret: []byte(masterSecret),
		iterations:   iterations,
		random:       rand.Reader,
	}, nil
}

// Encrypt seals plaintext under a key derived from a fresh salt.
// The empty string is returned unchanged.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(v.random, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := v.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(v.random, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(plaintext), nil)

	return encoding.EncodeToString(out), nil
}

// Decrypt opens a blob produced by Encrypt. Truncated, corrupted or
// foreign-keyed input fails with domain.ErrDecryption.
func (v *Vault) Decrypt(blob string) (string, error) {
	if blob == "" {
		return "", nil
	}

	raw, err := encoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", domain.ErrDecryption)
	}
	if len(raw) < SaltSize {
		return "", fmt.Errorf("%w: blob too short", domain.ErrDecryption)
	}

	salt, rest := raw[:SaltSize], raw[SaltSize:]
	aead, err := v.aead(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: blob too short", domain.ErrDecryption)
	}

	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}
	return string(plaintext), nil
}

func (v *Vault) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(v.masterSecret, salt, v.iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return aead, nil
}
