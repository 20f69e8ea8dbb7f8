package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example config to the --config path, or prints the effective config with --print.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("print") {
		return r.writeJSON(r.config, true)
	}

	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return nil
}

// SetupDatabase initializes the history database and runs (or rolls back) migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.History.Path
	if path == "" {
		return fmt.Errorf("%w: history.path is empty", shared.ErrInvalidConfig)
	}
	if !r.config.History.Enabled {
		r.logger.Warn("history is disabled; sessions will not be recorded until history.enabled = true")
	}

	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.History.MaxOpenConns, r.config.History.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.logger.Infof("rollback complete for database: %v", path)
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", path)
	return nil
}
