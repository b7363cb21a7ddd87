package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/app"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to read .env file: %v", err)
	}

	cmd, args, err := app.ParseCommand(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid command line: %v", err)
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	logger := infra.Logger()

	switch cmd {
	case app.CommandMigrate:
		err = app.Migrate(cfg, logger)
		err = errors.Join(err, infra.Shutdown(ctx))
	case app.CommandDeactivateUser, app.CommandDeactivateAccount:
		err = app.Deactivate(ctx, cmd, args, infra, cfg)
		err = errors.Join(err, infra.Shutdown(ctx))
	default:
		err = serve(ctx, infra, cfg)
	}

	if err != nil {
		logger.Fatal("Application failed", zap.String("command", string(cmd)), zap.Error(err))
	}
}

func serve(ctx context.Context, infra app.Infrastructure, cfg *config.Config) error {
	if cfg.Server.AutoMigrate {
		if err := app.Migrate(cfg, infra.Logger()); err != nil {
			return errors.Join(err, infra.Shutdown(ctx))
		}
	}

	application, err := app.NewApp(ctx, infra, cfg)
	if err != nil {
		return errors.Join(err, infra.Shutdown(ctx))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		infra.Logger().Info("Received shutdown signal")
		cancel()
	}()

	return application.Run(ctx)
}
