package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/metrics"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	metrics   *metrics.OrderMetrics
	logger    zerolog.Logger
}

// NewOrderService creates a new order service. m may be nil.
func NewOrderService(orderRepo repository.OrderRepository, m *metrics.OrderMetrics, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		metrics:   m,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Create submits a new order. Status and creation time are assigned by the store.
func (s *orderService) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if err := in.Validate(); err != nil {
		s.logger.Warn().Err(err).Str("customer_uid", in.CustomerUID).Msg("order rejected")
		return nil, err
	}

	order := &model.Order{
		ID:          uuid.New(),
		CustomerUID: in.CustomerUID,
		Status:      model.OrderStatusPending,
		Total:       in.Total,
		Items:       in.Items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.IncCreated()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_uid", order.CustomerUID).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return order, nil
}

// ListAll retrieves every order, newest first.
func (s *orderService) ListAll(ctx context.Context) []model.Order {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all orders")
		return []model.Order{}
	}
	return orders
}

// ListByCustomer retrieves the orders of one customer, newest first.
func (s *orderService) ListByCustomer(ctx context.Context, customerUID string) []model.Order {
	orders, err := s.orderRepo.GetByCustomer(ctx, customerUID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_uid", customerUID).Msg("failed to get customer orders")
		return []model.Order{}
	}
	return orders
}

// Get retrieves a snapshot of one order.
func (s *orderService) Get(ctx context.Context, id uuid.UUID) *model.Order {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil
	}
	return order
}

// SetStatus overwrites the status of an order.
func (s *orderService) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	if !status.IsValid() {
		return model.ErrInvalidStatus
	}

	if err := s.orderRepo.SetStatus(ctx, id, status); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Str("status", status.String()).Msg("failed to set order status")
		return fmt.Errorf("failed to set order status: %w", err)
	}

	s.metrics.IncTransition(status.String())
	s.logger.Info().Str("order_id", id.String()).Str("status", status.String()).Msg("order status set")
	return nil
}

// Advance moves an order one step along the pipeline. The write only succeeds if the order
// is still in the status that was read, so two concurrent advances never skip a step.
func (s *orderService) Advance(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to read order")
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.Status.IsTerminal() {
		return order, nil
	}

	from := order.Status
	to := from.Next()

	if err := s.orderRepo.CompareAndSetStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, model.ErrStatusConflict) {
			s.metrics.IncConflict("advance")
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", from.String()).
				Msg("order status changed before advance")
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to advance order")
		return nil, fmt.Errorf("failed to advance order: %w", err)
	}

	s.metrics.IncTransition(to.String())
	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("order advanced")

	order.Status = to
	return order, nil
}

// Update applies a free-form partial update. Concurrent edits are last-write-wins.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := s.orderRepo.Update(ctx, id, patch); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if patch.Status != nil {
		s.metrics.IncTransition(patch.Status.String())
	}
	s.logger.Info().Str("order_id", id.String()).Msg("order updated")
	return nil
}

// Delete removes an order.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// Comment attaches the customer's comment. The snapshot check rejects early; the store's
// conditional write settles races between two submissions.
func (s *orderService) Comment(ctx context.Context, customer *identity.Customer, id uuid.UUID, text string) (*model.Comment, error) {
	if customer == nil {
		return nil, model.ErrIdentityRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrCommentRequired
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to read order")
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	if err := order.CanComment(customer.UID()); err != nil {
		return nil, err
	}

	comment, err := s.orderRepo.AttachComment(ctx, id, model.Comment{
		CustomerUID: customer.UID(),
		Text:        text,
	})
	if err != nil {
		if errors.Is(err, model.ErrCommentExists) {
			s.metrics.IncConflict("comment")
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to attach comment")
		return nil, fmt.Errorf("failed to attach comment: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Str("customer_uid", customer.UID()).Msg("comment attached")
	return comment, nil
}
