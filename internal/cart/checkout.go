package cart

import (
	"context"
	"fmt"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/rs/zerolog"
)

// OrderWriter is the part of the order store used at checkout.
type OrderWriter interface {
	Create(ctx context.Context, order model.NewOrder) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerUID string) []model.Order
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Order  *model.Order  `json:"pedido"`
	Orders []model.Order `json:"pedidos"`
}

// Checkout turns carts into pending orders.
type Checkout struct {
	orders OrderWriter
	logger zerolog.Logger
}

// NewCheckout creates a checkout flow writing to orders.
func NewCheckout(orders OrderWriter, logger zerolog.Logger) *Checkout {
	return &Checkout{
		orders: orders,
		logger: logger.With().Str("component", "checkout").Logger(),
	}
}

// Submit places the cart contents as a pendiente order for customer. An empty cart or a
// missing customer is rejected without any write and the cart is left as it was. The
// submitted lines leave the cart only once the order is stored, after which the customer's
// orders are re-read.
func (co *Checkout) Submit(ctx context.Context, c *Cart, customer *identity.Customer) (*Receipt, error) {
	if customer == nil {
		return nil, model.ErrIdentityRequired
	}

	lines, total := c.snapshot()
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	order, err := co.orders.Create(ctx, model.NewOrder{
		CustomerUID: customer.UID(),
		Items:       lines,
		Total:       total,
	})
	if err != nil {
		co.logger.Error().Err(err).Str("customer_uid", customer.UID()).Msg("checkout failed")
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	c.deduct(lines)

	co.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_uid", customer.UID()).
		Str("total", total.String()).
		Msg("checkout completed")

	return &Receipt{
		Order:  order,
		Orders: co.orders.ListByCustomer(ctx, customer.UID()),
	}, nil
}
