package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/observability"
)

// Infrastructure exposes the opened backends. A backend the configuration
// does not use is nil.
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Mongo() *database.Mongo
	Bolt() *database.Bolt
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	mongo          *database.Mongo
	bolt           *database.Bolt
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	if err := i.open(ctx, cfg); err != nil {
		_ = i.Shutdown(context.Background())
		return nil, err
	}

	return i, nil
}

func (i *infrastructure) open(ctx context.Context, cfg config.Config) error {
	if cfg.Storage.UsesPostgres() {
		postgres, err := database.NewPostgres(ctx, cfg.Postgres.DSN(), database.PoolOptions{
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		i.postgres = postgres
	}

	if cfg.Storage.UsersDriver == config.DriverMongo {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout.Duration)
		mongo, err := database.NewMongo(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		i.mongo = mongo
	}

	if cfg.Storage.AccountsDriver == config.DriverBolt {
		bolt, err := database.NewBolt(cfg.Bolt.Path, cfg.Bolt.Timeout.Duration, repository.BoltBuckets...)
		if err != nil {
			return fmt.Errorf("failed to open bolt database: %w", err)
		}
		i.bolt = bolt
	}

	if cfg.Redis.Enabled {
		redis, err := database.NewRedis(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		i.redis = redis
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry()
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Mongo() *database.Mongo {
	return i.mongo
}

func (i *infrastructure) Bolt() *database.Bolt {
	return i.bolt
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

// Shutdown closes every opened backend concurrently, then flushes telemetry and the logger.
func (i *infrastructure) Shutdown(ctx context.Context) error {
	var closers []func() error
	if i.postgres != nil {
		closers = append(closers, i.postgres.Close)
	}
	if i.redis != nil {
		closers = append(closers, i.redis.Close)
	}
	if i.mongo != nil {
		closers = append(closers, func() error { return i.mongo.Close(ctx) })
	}
	if i.bolt != nil {
		closers = append(closers, i.bolt.Close)
	}

	errs := make(chan error, len(closers))
	for _, closeFn := range closers {
		go func() { errs <- closeFn() }()
	}

	collected := make([]error, 0, len(closers)+1)
	for range closers {
		collected = append(collected, <-errs)
	}
	collected = append(collected, observability.Shutdown(ctx, i.meterProvider, i.logger))

	return errors.Join(collected...)
}
