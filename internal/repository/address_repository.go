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

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// Insert adds a new shipping address.
func (r *addressRepository) Insert(ctx context.Context, tx pgx.Tx, address *model.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses
			(id, customer_id, recipient_name, phone, province, district, ward, address_line, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		address.ID,
		address.CustomerID,
		address.RecipientName,
		address.Phone,
		address.Province,
		address.District,
		address.Ward,
		address.AddressLine,
		address.IsDefault,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", address.CustomerID.String()).
			Msg("failed to insert shipping address")
		return fmt.Errorf("failed to insert shipping address: %w", err)
	}

	return nil
}

// ClearDefault clears is_default on every address of the customer. Runs
// in the checkout transaction so two concurrent checkouts cannot both end
// up with a default address.
func (r *addressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error) {
	query := `
		UPDATE shipping_addresses
		SET is_default = FALSE
		WHERE customer_id = $1 AND is_default = TRUE
	`

	tag, err := tx.Exec(ctx, query, customerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Msg("failed to clear default addresses")
		return 0, fmt.Errorf("failed to clear default addresses: %w", err)
	}

	return tag.RowsAffected(), nil
}
