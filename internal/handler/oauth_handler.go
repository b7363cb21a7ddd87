package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/dto"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/service"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/observability"
)

// OAuthHandler serves the provider callback and the provider session endpoints
type OAuthHandler struct {
	resolver   service.IdentityResolver
	cookieName string
	cookies    cookieWriter
	metrics    *observability.AuthMetrics
	logger     *zap.Logger
}

// NewOAuthHandler creates a new provider handler
func NewOAuthHandler(
	resolver service.IdentityResolver,
	cookies config.CookieConfig,
	metrics *observability.AuthMetrics,
	logger *zap.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		resolver:   resolver,
		cookieName: cookies.OAuthName,
		cookies:    newCookieWriter(cookies),
		metrics:    metrics,
		logger:     logger,
	}
}

// CookieName returns the cookie that carries provider session tokens
func (h *OAuthHandler) CookieName() string {
	return h.cookieName
}

// Callback signs in the user described by the provider profile
// @Summary Complete the provider sign-in
// @Tags oauth
// @Accept json
// @Produce json
// @Param request body dto.OAuthCallbackRequest true "Provider profile"
// @Success 200 {object} dto.OAuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/oauth/callback [post]
func (h *OAuthHandler) Callback(c *gin.Context) {
	started := time.Now()

	var req dto.OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	login, err := h.resolver.SignIn(c.Request.Context(), string(req.GithubID), req.AccessToken, req.Profile())
	h.metrics.Record(c.Request.Context(), "oauth_callback", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.writeLogin(c, login)
}

// Me returns the user behind the presented token
// @Summary Get the current provider user
// @Tags oauth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *OAuthHandler) Me(c *gin.Context) {
	started := time.Now()

	user, err := h.resolver.CurrentUser(c.Request.Context(), requestToken(c))
	h.metrics.Record(c.Request.Context(), "oauth_me", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Refresh exchanges a valid token for a new one
// @Summary Refresh the provider token
// @Tags oauth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.OAuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [get]
// @Router /auth/refresh [post]
func (h *OAuthHandler) Refresh(c *gin.Context) {
	started := time.Now()

	login, err := h.resolver.Refresh(c.Request.Context(), requestToken(c))
	h.metrics.Record(c.Request.Context(), "oauth_refresh", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.writeLogin(c, login)
}

// Logout clears the provider token cookie. Provider tokens are stateless.
// @Summary Log out of the provider session
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *OAuthHandler) Logout(c *gin.Context) {
	h.cookies.clear(c, h.cookieName)
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

func (h *OAuthHandler) writeLogin(c *gin.Context, login *service.ProviderLogin) {
	h.cookies.set(c, h.cookieName, login.Token.Token, time.Until(login.Token.ExpiresAt))

	c.JSON(http.StatusOK, dto.OAuthResponse{
		AccessToken: login.Token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   login.Token.ExpiresIn(time.Now()),
		User:        dto.NewUserResponse(login.User),
	})
}
