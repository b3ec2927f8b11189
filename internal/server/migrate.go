// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/database"
	"github.com/urfave/cli/v3"
)

// MigrateStatus opens the database, applying pending migrations, and logs
// the schema version.
func MigrateStatus(_ context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	version, err := database.Version(db.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("schema", "dsn", cfg.Database.DSN, "version", version)
	return nil
}

// MigrateReset rolls back every migration. It refuses to run without --yes.
func MigrateReset(_ context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return errors.New("refusing to drop all tables without --yes")
	}

	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateReset(db.DB); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	slog.Warn("schema reset", "dsn", cfg.Database.DSN)
	return nil
}
