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

const tokenTypeBearer = "Bearer"

// PasswordHandler serves the username/password account endpoints
type PasswordHandler struct {
	store      service.PasswordStore
	cookieName string
	cookies    cookieWriter
	metrics    *observability.AuthMetrics
	logger     *zap.Logger
}

// NewPasswordHandler creates a new password handler
func NewPasswordHandler(
	store service.PasswordStore,
	cookies config.CookieConfig,
	metrics *observability.AuthMetrics,
	logger *zap.Logger,
) *PasswordHandler {
	return &PasswordHandler{
		store:      store,
		cookieName: cookies.SessionName,
		cookies:    newCookieWriter(cookies),
		metrics:    metrics,
		logger:     logger,
	}
}

// CookieName returns the cookie that carries password session tokens
func (h *PasswordHandler) CookieName() string {
	return h.cookieName
}

// Signup handles password account registration
// @Summary Register a password account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup request"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *PasswordHandler) Signup(c *gin.Context) {
	started := time.Now()

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.store.CreateAccount(c.Request.Context(), req.Username, req.Email, req.Password)
	h.metrics.Record(c.Request.Context(), "password_signup", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAccountResponse(account))
}

// Login handles password login
// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *PasswordHandler) Login(c *gin.Context) {
	started := time.Now()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	login, err := h.store.Authenticate(c.Request.Context(), req.LoginIdentifier(), req.Password)
	h.metrics.Record(c.Request.Context(), "password_login", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ttl := time.Until(login.Token.ExpiresAt)
	h.cookies.set(c, h.cookieName, login.Token.Token, ttl)

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: login.Token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   login.Token.ExpiresIn(time.Now()),
		Account:     dto.NewAccountResponse(login.Account),
	})
}

// Logout ends the password session. A request without a token still succeeds.
// @Summary Log out of a password session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /api/v1/auth/logout [post]
func (h *PasswordHandler) Logout(c *gin.Context) {
	if token, err := tokenFromRequest(c, h.cookieName); err == nil {
		if err := h.store.InvalidateSession(c.Request.Context(), token); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	h.cookies.clear(c, h.cookieName)
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// Verify returns the account behind the presented session token
// @Summary Verify a password session
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/verify [get]
func (h *PasswordHandler) Verify(c *gin.Context) {
	started := time.Now()

	account, err := h.store.VerifySession(c.Request.Context(), requestToken(c))
	h.metrics.Record(c.Request.Context(), "password_verify", outcome(err), started)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

func outcome(err error) string {
	if err == nil {
		return observability.OutcomeSuccess
	}
	_, code := classifyError(err)
	return code
}
