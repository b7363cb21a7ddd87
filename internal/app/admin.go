package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

// Migrate applies the embedded postgres migrations. It is a no-op when no
// repository is backed by postgres.
func Migrate(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Storage.UsesPostgres() {
		logger.Info("No repository uses postgres, skipping migrations")
		return nil
	}

	if err := database.RunMigrations(cfg.Postgres.URL()); err != nil {
		return err
	}

	logger.Info("Migrations applied")
	return nil
}

// Deactivate clears the activation flag of the provider user or password
// account named by id.
func Deactivate(ctx context.Context, cmd Command, args []string, infra Infrastructure, cfg *config.Config) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("usage: %s <id>", cmd)
	}
	id := args[0]

	services, err := NewServices(ctx, infra, cfg)
	if err != nil {
		return err
	}

	switch cmd {
	case CommandDeactivateUser:
		err = services.Identities.SetUserActive(ctx, id, false)
	case CommandDeactivateAccount:
		err = services.Passwords.SetAccountActive(ctx, id, false)
	default:
		err = errors.New("not a deactivation command")
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", cmd, id, err)
	}

	infra.Logger().Info("Identity deactivated", zap.String("command", string(cmd)), zap.String("id", id))
	return nil
}
