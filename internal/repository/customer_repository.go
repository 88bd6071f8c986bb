package repository

import (
	"context"
	"fmt"

	"perfume-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// GetByEmail retrieves a customer by email, or nil when absent.
func (r *customerRepository) GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*model.Customer, error) {
	query := `
		SELECT id, name, email, phone, membership, created_at
		FROM customers
		WHERE email = $1
	`

	var c model.Customer
	err := tx.QueryRow(ctx, query, email).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Membership,
		&c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &c, nil
}

// Insert adds a new customer. The ON CONFLICT clause keeps a lost
// create-race from aborting the surrounding transaction; the caller
// re-fetches the winning row instead.
func (r *customerRepository) Insert(ctx context.Context, tx pgx.Tx, customer *model.Customer) (bool, error) {
	query := `
		INSERT INTO customers (id, name, email, phone, membership, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Membership,
		customer.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("email", customer.Email).Msg("failed to insert customer")
		return false, fmt.Errorf("failed to insert customer: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateProfile refreshes the mutable profile fields.
func (r *customerRepository) UpdateProfile(ctx context.Context, tx pgx.Tx, id uuid.UUID, name, phone string) error {
	query := `
		UPDATE customers
		SET name = $2, phone = $3
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, name, phone); err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to update customer profile")
		return fmt.Errorf("failed to update customer profile: %w", err)
	}

	return nil
}
