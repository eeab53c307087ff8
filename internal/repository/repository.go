package repository

import (
	"context"

	"restaurant-orders/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves every product ordered by category and name.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByCategory retrieves the products of one category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create inserts a product and fills in its timestamps.
	Create(ctx context.Context, product *model.Product) error

	// Update applies a partial update. Returns model.ErrProductNotFound when no row matched.
	Update(ctx context.Context, id string, patch model.ProductPatch) error

	// Delete removes a product. Returns model.ErrProductNotFound when no row matched.
	Delete(ctx context.Context, id string) error

	// Categories lists the distinct categories present in the catalogue.
	Categories(ctx context.Context) ([]string, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts a new order. The database assigns status and created_at, which are
	// written back into order.
	Create(ctx context.Context, order *model.Order) error

	// GetAll retrieves every order, newest first.
	GetAll(ctx context.Context) ([]model.Order, error)

	// GetByCustomer retrieves the orders placed by one customer, newest first.
	GetByCustomer(ctx context.Context, customerUID string) ([]model.Order, error)

	// GetByID retrieves an order by its ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// SetStatus overwrites the status unconditionally.
	SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error

	// CompareAndSetStatus moves the order from one status to another only if it is still in
	// the expected status. Returns model.ErrStatusConflict when it is not.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error

	// Update applies a free-form partial update.
	Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error

	// Delete removes an order.
	Delete(ctx context.Context, id uuid.UUID) error

	// AttachComment stores the comment only if the order has none yet. Returns
	// model.ErrCommentExists otherwise. The comment timestamp is assigned by the database.
	AttachComment(ctx context.Context, id uuid.UUID, comment model.Comment) (*model.Comment, error)
}

// UserRepository defines the interface for profile documents.
type UserRepository interface {
	// GetByUID retrieves a profile. Returns nil when it does not exist.
	GetByUID(ctx context.Context, uid string) (*model.Identity, error)

	// Create inserts a profile.
	Create(ctx context.Context, identity *model.Identity) error

	// SetRole overwrites the role of a profile and returns the updated profile, or nil when
	// the profile does not exist.
	SetRole(ctx context.Context, uid string, role model.Role) (*model.Identity, error)
}

// CredentialRepository defines the interface for the authentication backend's own records.
type CredentialRepository interface {
	// Create inserts a credential. Returns model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, credential *model.Credential) error

	// GetByEmail retrieves a credential by its lower-cased email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)

	// GetByUID retrieves a credential by uid. Returns nil when absent.
	GetByUID(ctx context.Context, uid string) (*model.Credential, error)

	// GetByGoogleSubject retrieves the credential linked to a Google account. Returns nil when absent.
	GetByGoogleSubject(ctx context.Context, subject string) (*model.Credential, error)

	// LinkGoogleSubject associates a Google account with an existing credential.
	LinkGoogleSubject(ctx context.Context, uid, subject string) error
}
