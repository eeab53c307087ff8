package repository

import (
	"context"
	"testing"

	"restaurant-orders/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T, repo ProductRepository, products []model.Product) {
	ctx := context.Background()
	for i := range products {
		require.NoError(t, repo.Create(ctx, &products[i]))
	}
}

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Bandeja Paisa", Price: decimal.NewFromInt(25000), Category: model.CategoryMains, Icon: "🍖"},
		{ID: "P002", Name: "Ajiaco Santandereano", Price: decimal.NewFromInt(18000), Category: model.CategorySoups, Icon: "🍲"},
		{ID: "P003", Name: "Empanadas", Price: decimal.NewFromInt(5000), Category: model.CategoryStarters, Icon: "🥟"},
		{ID: "P004", Name: "Arepa con Queso", Price: decimal.NewFromInt(4000), Category: model.CategoryStarters, Icon: "🥯"},
	}
}

func TestProductRepository_ReadQueries(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, sampleProducts())
	ctx := context.Background()

	t.Run("GetAll returns every product", func(t *testing.T) {
		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})

	tests := []struct {
		name     string
		category string
		expected []string
	}{
		{name: "starters", category: model.CategoryStarters, expected: []string{"Arepa con Queso", "Empanadas"}},
		{name: "soups", category: model.CategorySoups, expected: []string{"Ajiaco Santandereano"}},
		{name: "unknown category", category: "Bebidas", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run("GetByCategory "+tt.name, func(t *testing.T) {
			products, err := repo.GetByCategory(ctx, tt.category)
			require.NoError(t, err)

			names := []string{}
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	t.Run("GetByID returns the stored price", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.True(t, decimal.NewFromInt(25000).Equal(product.Price))
		assert.Equal(t, "🍖", product.Icon)
		assert.False(t, product.CreatedAt.IsZero())
	})

	t.Run("GetByID of a missing product returns nil", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("Categories are distinct and sorted", func(t *testing.T) {
		categories, err := repo.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{model.CategoryStarters, model.CategoryMains, model.CategorySoups}, categories)
	})
}

func TestProductRepository_CreateThenDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	arepa := &model.Product{
		ID:       "arepa-1",
		Name:     "Arepa",
		Price:    decimal.NewFromInt(4000),
		Category: model.CategoryStarters,
		Icon:     model.DefaultIcon,
	}
	require.NoError(t, repo.Create(ctx, arepa))
	assert.False(t, arepa.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, arepa.ID))

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	for _, p := range products {
		assert.NotEqual(t, arepa.ID, p.ID)
	}

	assert.ErrorIs(t, repo.Delete(ctx, arepa.ID), model.ErrProductNotFound)
}

func TestProductRepository_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, sampleProducts())
	ctx := context.Background()

	price := decimal.NewFromInt(4500)
	url := "https://cdn.example.com/productos/1_arepa.png"
	err := repo.Update(ctx, "P004", model.ProductPatch{Price: &price, ImageURL: &url})
	require.NoError(t, err)

	product, err := repo.GetByID(ctx, "P004")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.True(t, price.Equal(product.Price))
	assert.Equal(t, url, product.ImageURL)
	assert.Equal(t, "Arepa con Queso", product.Name, "untouched fields are kept")

	err = repo.Update(ctx, "NOPE", model.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	seedProducts(t, repo, sampleProducts()[:1])

	// Close the pool to simulate database errors
	pool.Close()
	ctx := context.Background()

	t.Run("GetAll with closed pool", func(t *testing.T) {
		products, err := repo.GetAll(ctx)
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P001")
		require.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("Delete with closed pool", func(t *testing.T) {
		err := repo.Delete(ctx, "P001")
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrProductNotFound)
	})
}
