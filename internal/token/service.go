// Package token issues and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// ClockSkew is the tolerance applied to exp and iat when verifying.
const ClockSkew = 5 * time.Second

// Options configures one token family. Secret is mandatory.
type Options struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Service signs HS256 tokens for a single issuer/audience/TTL combination.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewService builds a token service. Missing secret, issuer or audience is a configuration error.
func NewService(opts Options) (*Service, error) {
	if opts.Secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if opts.Issuer == "" || opts.Audience == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &Service{
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		audience: opts.Audience,
		ttl:      opts.TTL,
		now:      time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

// TTL returns the lifetime given to issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subjectID.
func (s *Service) Issue(subjectID string) (domain.IssuedToken, error) {
	if subjectID == "" {
		return domain.IssuedToken{}, errors.New("token subject is required")
	}

	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return domain.IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, expiry, issuer and audience and returns the claims.
// A failing signature is reported before any claim failure.
func (s *Service) Verify(tokenString string) (*domain.TokenClaims, error) {
	if tokenString == "" {
		return nil, domain.ErrMalformedToken
	}

	var claims sessionClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing claims", domain.ErrMalformedToken)
	}

	return &domain.TokenClaims{
		SubjectID: claims.Subject,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.ErrInvalidAudience
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
