package main

import (
	"context"
	"fmt"
	"os"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/database"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/repository"

	"github.com/shopspring/decimal"
)

// menu is the starter catalogue loaded into an empty database.
var menu = []model.Product{
	{
		ID:          "1",
		Name:        "Bandeja Paisa",
		Description: "Plato típico colombiano con carne, chicharrón y más",
		Price:       decimal.NewFromInt(25000),
		Category:    model.CategoryMains,
		Icon:        "🍖",
	},
	{
		ID:          "2",
		Name:        "Ajiaco Santandereano",
		Description: "Sopa tradicional con pollo, papa y verduras",
		Price:       decimal.NewFromInt(18000),
		Category:    model.CategorySoups,
		Icon:        "🍲",
	},
	{
		ID:          "3",
		Name:        "Tamales",
		Description: "Tamales caseros envueltos en hoja de plátano",
		Price:       decimal.NewFromInt(8000),
		Category:    model.CategoryStarters,
		Icon:        "🌮",
	},
	{
		ID:          "4",
		Name:        "Sancocho de Costilla",
		Description: "Sancocho con costilla y verduras frescas",
		Price:       decimal.NewFromInt(20000),
		Category:    model.CategoryMains,
		Icon:        "🍲",
	},
	{
		ID:          "5",
		Name:        "Empanadas",
		Description: "Empanadas rellenas de carne o queso",
		Price:       decimal.NewFromInt(5000),
		Category:    model.CategoryStarters,
		Icon:        "🥟",
	},
	{
		ID:          "6",
		Name:        "Arepa con Queso",
		Description: "Arepa tradicional rellena de queso derretido",
		Price:       decimal.NewFromInt(4000),
		Category:    model.CategoryStarters,
		Icon:        "🥯",
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dbCfg, loggerCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(loggerCfg).With().Str("component", "seed").Logger()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewProductRepository(pool, logger)

	created := 0
	for i := range menu {
		product := menu[i]
		existing, err := repo.GetByID(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("failed to look up product %s: %w", product.ID, err)
		}
		if existing != nil {
			logger.Debug().Str("product_id", product.ID).Msg("product already present, skipping")
			continue
		}
		if err := repo.Create(ctx, &product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.ID, err)
		}
		created++
	}

	logger.Info().Int("created", created).Int("total", len(menu)).Msg("catalogue seeded")
	return nil
}
