package domain

import (
	"errors"
	"fmt"
)

// Authentication and identity failures. Each one is a stable, expected outcome
// that callers map to a response; anything else is unexpected.
var (
	ErrUnauthenticated    = errors.New("no credentials presented")
	ErrMalformedToken     = errors.New("malformed token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidIssuer      = errors.New("token issuer mismatch")
	ErrInvalidAudience    = errors.New("token audience mismatch")
	ErrSessionRevoked     = errors.New("session is no longer active")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrDuplicateIdentity  = errors.New("username or email already registered")
	ErrDecryption         = errors.New("unable to decrypt value")
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limit exceeded")

	// ErrStorageFailure matches every *StorageError.
	ErrStorageFailure = errors.New("storage failure")
)

var domainErrors = []error{
	ErrUnauthenticated,
	ErrMalformedToken,
	ErrExpiredToken,
	ErrInvalidIssuer,
	ErrInvalidAudience,
	ErrSessionRevoked,
	ErrInvalidCredentials,
	ErrAccountDeactivated,
	ErrDuplicateIdentity,
	ErrDecryption,
	ErrNotFound,
	ErrValidation,
	ErrRateLimited,
}

// StorageError wraps a failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a storage failure of op. A nil err returns nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// IsExpected reports whether err is one of the enumerated identity failures,
// as opposed to a storage outage or an unexpected fault.
func IsExpected(err error) bool {
	if err == nil || errors.Is(err, ErrStorageFailure) {
		return false
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
