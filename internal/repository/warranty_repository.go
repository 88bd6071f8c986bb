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

// warrantyRepository implements the WarrantyRepository interface using PostgreSQL.
type warrantyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWarrantyRepository creates a new PostgreSQL-backed warranty repository.
func NewWarrantyRepository(pool *pgxpool.Pool, logger zerolog.Logger) WarrantyRepository {
	return &warrantyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "warranty").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *warrantyRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// EligibleDetails lists order details that should receive a warranty:
// warranty-bearing product, no warranty row yet.
func (r *warrantyRepository) EligibleDetails(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]WarrantyCandidate, error) {
	query := `
		SELECT od.id, o.customer_id, p.warranty_months
		FROM order_details od
		JOIN orders o ON o.id = od.order_id
		JOIN products p ON p.id = od.product_id
		LEFT JOIN warranties w ON w.order_detail_id = od.id
		WHERE od.order_id = $1
		  AND p.warranty_months > 0
		  AND w.id IS NULL
		ORDER BY od.id
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query eligible details")
		return nil, fmt.Errorf("failed to query eligible details: %w", err)
	}
	defer rows.Close()

	var candidates []WarrantyCandidate
	for rows.Next() {
		var c WarrantyCandidate
		if err := rows.Scan(&c.OrderDetailID, &c.CustomerID, &c.WarrantyMonths); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan eligible detail row")
			return nil, fmt.Errorf("failed to scan eligible detail: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating eligible detail rows")
		return nil, fmt.Errorf("error iterating eligible details: %w", err)
	}

	return candidates, nil
}

// Insert adds a warranty row.
func (r *warrantyRepository) Insert(ctx context.Context, tx pgx.Tx, warranty *model.Warranty) error {
	query := `
		INSERT INTO warranties
			(id, order_detail_id, customer_id, code, start_date, end_date, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		warranty.ID,
		warranty.OrderDetailID,
		warranty.CustomerID,
		warranty.Code,
		warranty.StartDate,
		warranty.EndDate,
		warranty.Status,
		warranty.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_detail_id", warranty.OrderDetailID.String()).
			Msg("failed to insert warranty")
		return fmt.Errorf("failed to insert warranty: %w", err)
	}

	return nil
}

// ListByOrder lists all warranties covering the order's details.
func (r *warrantyRepository) ListByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.Warranty, error) {
	query := `
		SELECT w.id, w.order_detail_id, w.customer_id, w.code,
		       w.start_date, w.end_date, w.status, w.updated_at
		FROM warranties w
		JOIN order_details od ON od.id = w.order_detail_id
		WHERE od.order_id = $1
		ORDER BY w.id
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query warranties")
		return nil, fmt.Errorf("failed to query warranties: %w", err)
	}
	defer rows.Close()

	return scanWarranties(rows)
}

// DeleteClaims removes all claims of the given warranties.
func (r *warrantyRepository) DeleteClaims(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error) {
	if len(warrantyIDs) == 0 {
		return 0, nil
	}

	query := `DELETE FROM warranty_claims WHERE warranty_id = ANY($1)`

	tag, err := tx.Exec(ctx, query, warrantyIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("warranty_count", len(warrantyIDs)).Msg("failed to delete warranty claims")
		return 0, fmt.Errorf("failed to delete warranty claims: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the given warranties.
func (r *warrantyRepository) Delete(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error) {
	if len(warrantyIDs) == 0 {
		return 0, nil
	}

	query := `DELETE FROM warranties WHERE id = ANY($1)`

	tag, err := tx.Exec(ctx, query, warrantyIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("warranty_count", len(warrantyIDs)).Msg("failed to delete warranties")
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateStatus sets a warranty's status.
func (r *warrantyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE warranties
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, updatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("warranty_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update warranty status")
		return false, fmt.Errorf("failed to update warranty status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ExpireOutdated flips every active warranty past its end date to
// expired. A single statement, so rerunning it is a no-op.
func (r *warrantyRepository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE warranties
		SET status = $2, updated_at = $1
		WHERE status = $3 AND end_date < $1
	`

	tag, err := r.pool.Exec(ctx, query, now, model.WarrantyExpired, model.WarrantyActive)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to expire outdated warranties")
		return 0, fmt.Errorf("failed to expire outdated warranties: %w", err)
	}

	return tag.RowsAffected(), nil
}

// FindExpiringSoon lists active warranties ending within the window.
func (r *warrantyRepository) FindExpiringSoon(ctx context.Context, now time.Time, withinDays int) ([]model.Warranty, error) {
	until := now.AddDate(0, 0, withinDays)

	query := `
		SELECT id, order_detail_id, customer_id, code,
		       start_date, end_date, status, updated_at
		FROM warranties
		WHERE status = $1 AND end_date >= $2 AND end_date <= $3
		ORDER BY end_date
	`

	rows, err := r.pool.Query(ctx, query, model.WarrantyActive, now, until)
	if err != nil {
		r.logger.Error().Err(err).Int("within_days", withinDays).Msg("failed to query expiring warranties")
		return nil, fmt.Errorf("failed to query expiring warranties: %w", err)
	}
	defer rows.Close()

	return scanWarranties(rows)
}

// scanWarranties drains a warranty row set.
func scanWarranties(rows pgx.Rows) ([]model.Warranty, error) {
	var warranties []model.Warranty
	for rows.Next() {
		var w model.Warranty
		err := rows.Scan(
			&w.ID,
			&w.OrderDetailID,
			&w.CustomerID,
			&w.Code,
			&w.StartDate,
			&w.EndDate,
			&w.Status,
			&w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warranty: %w", err)
		}
		warranties = append(warranties, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warranties: %w", err)
	}

	return warranties, nil
}
