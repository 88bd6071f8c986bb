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

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its code, or nil when absent.
func (r *couponRepository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, amount, expires_at, is_used, customer_id, created_at, used_at
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := tx.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Amount,
		&c.ExpiresAt,
		&c.IsUsed,
		&c.CustomerID,
		&c.CreatedAt,
		&c.UsedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// Insert provisions a new coupon. Reports false when the code already
// exists, without aborting the surrounding transaction.
func (r *couponRepository) Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error) {
	query := `
		INSERT INTO coupons (id, code, amount, expires_at, is_used, customer_id, created_at, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Amount,
		coupon.ExpiresAt,
		coupon.IsUsed,
		coupon.CustomerID,
		coupon.CreatedAt,
		coupon.UsedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to insert coupon")
		return false, fmt.Errorf("failed to insert coupon: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkUsed flips is_used on an unused coupon. The is_used guard in the
// WHERE clause makes concurrent consumption of the same coupon lose
// cleanly: the second writer sees zero rows affected.
func (r *couponRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time) (bool, error) {
	query := `
		UPDATE coupons
		SET is_used = TRUE, used_at = $2
		WHERE id = $1 AND is_used = FALSE
	`

	tag, err := tx.Exec(ctx, query, id, usedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to mark coupon used")
		return false, fmt.Errorf("failed to mark coupon used: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
