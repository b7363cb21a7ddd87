package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/handler"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/service"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/token"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/utils"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/vault"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/observability"
)

const serviceName = "space-biology-identity"

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

// Services is the identity core built from configuration and the opened backends.
type Services struct {
	Passwords   service.PasswordStore
	Identities  service.IdentityResolver
	RateLimiter service.RateLimiter
}

// NewServices wires repositories, the vault and both token families.
// RateLimiter is nil when Redis is disabled.
func NewServices(ctx context.Context, infra Infrastructure, cfg *config.Config) (*Services, error) {
	repos, err := repository.NewRepositories(ctx, cfg.Storage, repository.Backends{
		Postgres:        infra.Postgres(),
		Mongo:           infra.Mongo(),
		MongoCollection: cfg.Mongo.Collection,
		Bolt:            infra.Bolt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	secretVault, err := vault.New(cfg.Vault.MasterSecret, cfg.Vault.KDFIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault: %w", err)
	}

	oauthTokens, err := token.NewService(token.Options{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.OAuthAudience,
		TTL:      cfg.JWT.OAuthTokenExpiry.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth token service: %w", err)
	}

	passwordTokens, err := token.NewService(token.Options{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.PasswordAudience,
		TTL:      cfg.JWT.PasswordTokenExpiry.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create password token service: %w", err)
	}

	var revocations service.RevocationCache
	var rateLimiter service.RateLimiter
	if rdb := infra.Redis(); rdb != nil {
		revocations = service.NewRedisRevocationCache(rdb)
		rateLimiter = service.NewRedisRateLimiter(rdb)
	}

	passwords, err := service.NewPasswordStore(service.PasswordStoreOptions{
		Accounts:          repos.Account,
		Sessions:          repos.Session,
		Tokens:            passwordTokens,
		Hasher:            utils.NewPasswordHasher(cfg.Security.PasswordHashIterations),
		Revocations:       revocations,
		MinPasswordLength: cfg.Security.PasswordMinLength,
		Logger:            infra.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create password store: %w", err)
	}

	return &Services{
		Passwords:   passwords,
		Identities:  service.NewIdentityResolver(repos.User, secretVault, oauthTokens),
		RateLimiter: rateLimiter,
	}, nil
}

func NewApp(ctx context.Context, infra Infrastructure, cfg *config.Config) (*App, error) {
	services, err := NewServices(ctx, infra, cfg)
	if err != nil {
		return nil, err
	}

	var metrics *observability.AuthMetrics
	if mp := infra.MeterProvider(); mp != nil {
		metrics, err = observability.NewAuthMetrics(mp.Meter(serviceName))
		if err != nil {
			return nil, err
		}
	}

	logger := infra.Logger()
	passwordHandler := handler.NewPasswordHandler(services.Passwords, cfg.Cookie, metrics, logger)
	oauthHandler := handler.NewOAuthHandler(services.Identities, cfg.Cookie, metrics, logger)
	healthChecker := NewHealthChecker(infra)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, passwordHandler, oauthHandler, services.RateLimiter, healthChecker, infra.MetricsHandler(), logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	passwordHandler *handler.PasswordHandler,
	oauthHandler *handler.OAuthHandler,
	rateLimiter service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
	logger *zap.Logger,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limited := []gin.HandlerFunc{}
	if rateLimiter != nil {
		limited = append(limited, handler.RateLimitMiddleware(
			rateLimiter,
			cfg.Security.RateLimitRequests,
			cfg.Security.RateLimitWindow.Duration,
			handler.IPBasedKey,
			logger,
		))
	}

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", append(limited, passwordHandler.Signup)...)
			auth.POST("/login", append(limited, passwordHandler.Login)...)
			auth.POST("/logout", passwordHandler.Logout)
			auth.GET("/verify", handler.RequireToken(passwordHandler.CookieName(), logger), passwordHandler.Verify)
		}
	}

	oauth := router.Group("/auth")
	{
		requireToken := handler.RequireToken(oauthHandler.CookieName(), logger)
		oauth.POST("/oauth/callback", oauthHandler.Callback)
		oauth.GET("/me", requireToken, oauthHandler.Me)
		oauth.GET("/refresh", requireToken, oauthHandler.Refresh)
		oauth.POST("/refresh", requireToken, oauthHandler.Refresh)
		oauth.POST("/logout", oauthHandler.Logout)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	a.infra.Logger().Info("Application exited successfully")
	return a.infra.Shutdown(ctx)
}
