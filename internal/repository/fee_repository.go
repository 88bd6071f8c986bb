package repository

import (
	"context"
	"fmt"

	"perfume-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// feeRepository implements the FeeRepository interface using PostgreSQL.
type feeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFeeRepository creates a new PostgreSQL-backed fee repository.
func NewFeeRepository(pool *pgxpool.Pool, logger zerolog.Logger) FeeRepository {
	return &feeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "fee").Logger(),
	}
}

// GetByNames retrieves the named fee rows. Fees are read inside the
// checkout transaction so a quote and its order see the same values.
func (r *feeRepository) GetByNames(ctx context.Context, tx pgx.Tx, names []string) ([]model.Fee, error) {
	query := `
		SELECT id, name, value, threshold
		FROM fees
		WHERE name = ANY($1)
	`

	rows, err := tx.Query(ctx, query, names)
	if err != nil {
		r.logger.Error().Err(err).Strs("names", names).Msg("failed to query fees")
		return nil, fmt.Errorf("failed to query fees: %w", err)
	}
	defer rows.Close()

	var fees []model.Fee
	for rows.Next() {
		var f model.Fee
		if err := rows.Scan(&f.ID, &f.Name, &f.Value, &f.Threshold); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan fee row")
			return nil, fmt.Errorf("failed to scan fee: %w", err)
		}
		fees = append(fees, f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating fee rows")
		return nil, fmt.Errorf("error iterating fees: %w", err)
	}

	return fees, nil
}
