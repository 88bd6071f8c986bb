package repository

import (
	"context"
	"fmt"
	"time"

	"perfume-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

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

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertOrder inserts a new order within the provided transaction.
func (r *orderRepository) InsertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders
			(id, customer_id, address_id, coupon_id, total_amount, status, payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.AddressID,
		order.CouponID,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order inserted")

	return nil
}

// InsertDetails inserts the order's line items.
func (r *orderRepository) InsertDetails(ctx context.Context, tx pgx.Tx, details []model.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_details (id, order_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query, d.ID, d.OrderID, d.ProductID, d.Quantity, d.UnitPrice, d.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(details); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", details[i].OrderID.String()).
				Str("product_id", details[i].ProductID.String()).
				Msg("failed to insert order detail")
			return fmt.Errorf("failed to insert order detail: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(details)).
		Msg("order details inserted")

	return nil
}

// GetByID retrieves a committed order with its line items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	orderQuery := `
		SELECT id, customer_id, address_id, coupon_id, total_amount, status,
		       payment_method, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.AddressID,
		&order.CouponID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	detailQuery := `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_details
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, detailQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order details")
		return nil, nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	var details []model.OrderDetail
	for rows.Next() {
		var d model.OrderDetail
		err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.LineTotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order detail row")
			return nil, nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order detail rows")
		return nil, nil, fmt.Errorf("error iterating order details: %w", err)
	}

	return &order, details, nil
}

// GetForUpdate retrieves an order inside the transaction with a row lock
// so concurrent status changes serialize.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, customer_id, address_id, coupon_id, total_amount, status,
		       payment_method, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var order model.Order
	err := tx.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.AddressID,
		&order.CouponID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &order, nil
}

// UpdateStatus persists a new order status.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, updatedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, status, updatedAt); err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", status.String()).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
