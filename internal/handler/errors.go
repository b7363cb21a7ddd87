package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/dto"
)

// Error codes returned in the "error" field of every failure body.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeMalformedToken     = "malformed_token"
	CodeExpiredToken       = "expired_token"
	CodeInvalidIssuer      = "invalid_issuer"
	CodeInvalidAudience    = "invalid_audience"
	CodeSessionRevoked     = "session_revoked"
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountDeactivated = "account_deactivated"
	CodeDuplicateIdentity  = "duplicate_identity"
	CodeNotFound           = "not_found"
	CodeValidation         = "validation_failed"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

type errorKind struct {
	target error
	status int
	code   string
}

var errorKinds = []errorKind{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
	{domain.ErrMalformedToken, http.StatusUnauthorized, CodeMalformedToken},
	{domain.ErrExpiredToken, http.StatusUnauthorized, CodeExpiredToken},
	{domain.ErrInvalidIssuer, http.StatusUnauthorized, CodeInvalidIssuer},
	{domain.ErrInvalidAudience, http.StatusUnauthorized, CodeInvalidAudience},
	{domain.ErrSessionRevoked, http.StatusUnauthorized, CodeSessionRevoked},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{domain.ErrAccountDeactivated, http.StatusForbidden, CodeAccountDeactivated},
	{domain.ErrDuplicateIdentity, http.StatusBadRequest, CodeDuplicateIdentity},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrValidation, http.StatusBadRequest, CodeValidation},
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
}

// classifyError maps err to a response status and code. Storage failures are
// checked first so a wrapped driver error never leaks as a domain kind.
func classifyError(err error) (int, string) {
	if errors.Is(err, domain.ErrStorageFailure) {
		return http.StatusInternalServerError, CodeInternal
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind.status, kind.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// respondError writes the failure body for err and aborts the chain.
// Unexpected errors are logged and their text is not returned.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := classifyError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// respondBindError reports a request body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   CodeValidation,
		Message: "invalid request body",
		Details: err.Error(),
	})
}
