package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies a goose command ("up", "down", "status", ...) against the database
// reachable through connString using the embedded migrations.
func Migrate(ctx context.Context, connString, command string, logger zerolog.Logger, args ...string) error {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info().Str("command", command).Msg("running database migrations")

	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		logger.Error().Err(err).Str("command", command).Msg("database migration failed")
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}
