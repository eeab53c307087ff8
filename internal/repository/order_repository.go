package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, customer_uid, status, total, items, comment, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Create inserts a new order. Status and timestamps come from the column defaults so the
// database is the only clock that stamps an order.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_uid, total, items)
		VALUES ($1, $2, $3, $4)
		RETURNING status, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		order.ID,
		order.CustomerUID,
		order.Total,
		order.Items,
	).Scan(&order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return nil
}

// GetAll retrieves every order, newest first.
func (r *orderRepository) GetAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return r.collect(rows)
}

// GetByCustomer retrieves the orders placed by one customer, newest first.
func (r *orderRepository) GetByCustomer(ctx context.Context, customerUID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_uid = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, customerUID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_uid", customerUID).Msg("failed to query customer orders")
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}
	return r.collect(rows)
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// SetStatus overwrites the status unconditionally.
func (r *orderRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Str("status", status.String()).Msg("failed to set order status")
		return fmt.Errorf("failed to set order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// CompareAndSetStatus moves the order from one status to another only if it is still in
// the expected status.
func (r *orderRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("failed to transition order status")
		return fmt.Errorf("failed to transition order status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrOrderNotFound
	}

	r.logger.Warn().
		Str("order_id", id.String()).
		Str("expected", from.String()).
		Msg("order status changed concurrently")
	return model.ErrStatusConflict
}

// Update applies a free-form partial update.
func (r *orderRepository) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error {
	query := `
		UPDATE orders SET
			status     = COALESCE($2, status),
			total      = COALESCE($3, total),
			items      = COALESCE($4, items),
			updated_at = NOW()
		WHERE id = $1
	`

	// A nil slice would be encoded as the JSON literal null rather than SQL NULL.
	var items any
	if patch.Items != nil {
		items = patch.Items
	}

	tag, err := r.pool.Exec(ctx, query, id, patch.Status, patch.Total, items)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// Delete removes an order.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// AttachComment stores the comment only if the order has none yet.
func (r *orderRepository) AttachComment(ctx context.Context, id uuid.UUID, comment model.Comment) (*model.Comment, error) {
	query := `
		UPDATE orders SET
			comment    = jsonb_build_object('uid', $2::text, 'texto', $3::text, 'fecha', to_jsonb(NOW())),
			updated_at = NOW()
		WHERE id = $1 AND comment IS NULL
		RETURNING comment
	`

	var stored model.Comment
	err := r.pool.QueryRow(ctx, query, id, comment.CustomerUID, comment.Text).Scan(&stored)
	if err == nil {
		stored.CreatedAt = stored.CreatedAt.UTC()
		return &stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to attach comment")
		return nil, fmt.Errorf("failed to attach comment: %w", err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrOrderNotFound
	}
	return nil, model.ErrCommentExists
}

func (r *orderRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to check order existence")
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return exists, nil
}

func (r *orderRepository) collect(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// scanOrder reads one order row and normalises every timestamp to UTC.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerUID,
		&o.Status,
		&o.Total,
		&o.Items,
		&o.Comment,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if o.Comment != nil {
		o.Comment.CreatedAt = o.Comment.CreatedAt.UTC()
	}
	if o.Items == nil {
		o.Items = []model.OrderLine{}
	}
	return &o, nil
}
