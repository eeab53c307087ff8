package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"restaurant-orders/internal/model"
	"restaurant-orders/internal/repository"
	"restaurant-orders/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	uploader    storage.ImageUploader
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(productRepo repository.ProductRepository, uploader storage.ImageUploader, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		uploader:    uploader,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// List retrieves every product.
func (s *catalogService) List(ctx context.Context) []model.Product {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all products")
		return []model.Product{}
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")
	return products
}

// ListByCategory retrieves the products of one category.
func (s *catalogService) ListByCategory(ctx context.Context, category string) []model.Product {
	products, err := s.productRepo.GetByCategory(ctx, category)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("failed to get products by category")
		return []model.Product{}
	}
	return products
}

// Get retrieves a single product by ID.
func (s *catalogService) Get(ctx context.Context, id string) *model.Product {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
	}
	return product
}

// Categories lists the categories present in the catalogue.
func (s *catalogService) Categories(ctx context.Context) []string {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get categories")
		return []string{}
	}
	return categories
}

// Create adds a product and returns it with its assigned ID.
func (s *catalogService) Create(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	icon := input.Icon
	if icon == "" {
		icon = model.DefaultIcon
	}

	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Icon:        icon,
		ImageURL:    input.ImageURL,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("category", product.Category).
		Msg("product created successfully")

	return product, nil
}

// Update applies a partial update to a product. Fields absent from the patch, including
// the image URL, keep their stored values.
func (s *catalogService) Update(ctx context.Context, id string, patch model.ProductPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := s.productRepo.Update(ctx, id, patch); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return nil
}

// Delete removes a product.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// UploadImage stores a product image and returns its public URL.
func (s *catalogService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	url, err := s.uploader.Upload(ctx, filename, contentType, body)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn().Str("filename", filename).Str("reason", domainErr.Message).Msg("product image rejected")
			return "", err
		}
		s.logger.Error().Err(err).Str("filename", filename).Msg("failed to upload product image")
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
