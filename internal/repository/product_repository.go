package repository

import (
	"context"
	"fmt"

	"perfume-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetByName retrieves a product by its unique name, or nil when absent.
func (r *productRepository) GetByName(ctx context.Context, tx pgx.Tx, name string) (*model.Product, error) {
	query := `
		SELECT id, name, price, stock, published, warranty_months, created_at
		FROM products
		WHERE name = $1
	`

	var p model.Product
	err := tx.QueryRow(ctx, query, name).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Published,
		&p.WarrantyMonths,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("name", name).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("name", name).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Insert adds a new product row.
func (r *productRepository) Insert(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, published, warranty_months, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.Published,
		product.WarrantyMonths,
		product.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("name", product.Name).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}
