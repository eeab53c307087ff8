package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Known catalogue categories. The set is open: products may carry any category.
const (
	CategoryStarters = "Entradas"
	CategorySoups    = "Sopas"
	CategoryMains    = "Platos Principales"
	CategoryDrinks   = "Bebidas"
	CategoryDesserts = "Postres"
)

// DefaultIcon is shown for products without an uploaded image.
const DefaultIcon = "🍽️"

// Product represents a dish in the catalogue.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"nombre" db:"name"`
	Description string          `json:"descripcion" db:"description"`
	Price       decimal.Decimal `json:"precio" db:"price"`
	Category    string          `json:"categoria" db:"category"`
	Icon        string          `json:"imagen" db:"icon"`
	ImageURL    string          `json:"imagenUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string          `json:"nombre" validate:"required"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Category    string          `json:"categoria" validate:"required"`
	Icon        string          `json:"imagen"`
	ImageURL    string          `json:"imagenUrl"`
}

// Validate checks the creation invariants of a product.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrProductNameRequired
	}
	if in.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string          `json:"nombre,omitempty"`
	Description *string          `json:"descripcion,omitempty"`
	Price       *decimal.Decimal `json:"precio,omitempty"`
	Category    *string          `json:"categoria,omitempty"`
	Icon        *string          `json:"imagen,omitempty"`
	ImageURL    *string          `json:"imagenUrl,omitempty"`
}

// Validate rejects patches that would break the product invariants.
func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrProductNameRequired
	}
	if p.Price != nil && p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Icon == nil && p.ImageURL == nil
}
