package service

import (
	"context"
	"io"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines operations for the product catalogue.
//
// Reads never fail: a storage failure is logged and reported as an empty result.
type CatalogService interface {
	// List retrieves every product.
	List(ctx context.Context) []model.Product

	// ListByCategory retrieves the products of one category.
	ListByCategory(ctx context.Context, category string) []model.Product

	// Get retrieves a single product. Returns nil when it does not exist or cannot be read.
	Get(ctx context.Context, id string) *model.Product

	// Categories lists the categories present in the catalogue.
	Categories(ctx context.Context) []string

	// Create adds a product and returns it with its assigned ID.
	Create(ctx context.Context, input model.ProductInput) (*model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id string, patch model.ProductPatch) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error

	// UploadImage stores a product image and returns its public URL.
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// OrderService defines operations for order management.
//
// Reads follow the same silent-empty policy as CatalogService.
type OrderService interface {
	// Create submits a new order in status pendiente.
	Create(ctx context.Context, order model.NewOrder) (*model.Order, error)

	// ListAll retrieves every order, newest first.
	ListAll(ctx context.Context) []model.Order

	// ListByCustomer retrieves the orders of one customer, newest first.
	ListByCustomer(ctx context.Context, customerUID string) []model.Order

	// Get retrieves a snapshot of one order. Returns nil when it does not exist or cannot be read.
	Get(ctx context.Context, id uuid.UUID) *model.Order

	// SetStatus overwrites the status of an order without checking the pipeline.
	SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error

	// Advance moves an order to the next status of the pipeline. Delivered orders are
	// returned unchanged.
	Advance(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// Update applies a free-form partial update.
	Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error

	// Delete removes an order.
	Delete(ctx context.Context, id uuid.UUID) error

	// Comment attaches the customer's single comment to one of their orders.
	Comment(ctx context.Context, customer *identity.Customer, id uuid.UUID, text string) (*model.Comment, error)
}
