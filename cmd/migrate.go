package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Migrate applies pending database migrations, or rolls back the most
// recent one with --rollback.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back last migration")
		if err := shared.RollbackMigration(r.db); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return r.writePlain("✓ Rolled back last migration\n")
	}

	r.logger.Info("running database migrations", "path", r.config.Database.Path)
	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return r.writePlain("✓ Migrations applied\n")
}
