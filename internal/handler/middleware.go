package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

const tokenContextKey = "auth_token"

// tokenFromRequest reads the session token from cookieName first and then
// from an "Authorization: Bearer" header.
func tokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", domain.ErrUnauthenticated
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domain.ErrUnauthenticated
	}

	return strings.TrimSpace(token), nil
}

// RequireToken aborts with 401 when the request carries no token and otherwise
// stores it in the context. It does not verify the token.
func RequireToken(cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c, cookieName)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// requestToken returns the token stored by RequireToken.
func requestToken(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}
