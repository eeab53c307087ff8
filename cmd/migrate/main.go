package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/database"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|up-by-one|up-to|down|down-to|redo|reset|status|version")
	flag.Parse()

	dbCfg, loggerCfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(loggerCfg).With().Str("component", "migrate").Logger()

	// Remaining positional arguments are passed through to goose (e.g. the target of up-to).
	if err := database.Migrate(context.Background(), dbCfg.ConnectionString(), *cmd, logger, flag.Args()...); err != nil {
		logger.Error().Err(err).Str("command", *cmd).Msg("migration failed")
		os.Exit(1)
	}

	logger.Info().Str("command", *cmd).Msg("migration finished")
}
