package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"perfume-store/internal/model"
	"perfume-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// warrantyService implements WarrantyService.
type warrantyService struct {
	warrantyRepo repository.WarrantyRepository
	logger       zerolog.Logger

	// sweepMu serialises the expiry sweep with itself. Overlapping runs
	// would only race harmlessly, but they waste a full table scan.
	sweepMu sync.Mutex
}

// NewWarrantyService creates a new warranty service.
func NewWarrantyService(warrantyRepo repository.WarrantyRepository, logger zerolog.Logger) WarrantyService {
	return &warrantyService{
		warrantyRepo: warrantyRepo,
		logger:       logger.With().Str("service", "warranty").Logger(),
	}
}

// CreateForOrder creates one warranty per eligible order detail. Details
// that already carry a warranty are excluded by the eligibility query,
// so calling this twice for the same order creates nothing new.
func (s *warrantyService) CreateForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	tx, err := s.warrantyRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create warranties: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	candidates, err := s.warrantyRepo.EligibleDetails(ctx, tx, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to create warranties: %w", err)
	}

	now := time.Now()
	for _, c := range candidates {
		warranty := &model.Warranty{
			ID:            uuid.New(),
			OrderDetailID: c.OrderDetailID,
			CustomerID:    c.CustomerID,
			Code:          generateWarrantyCode(),
			StartDate:     now,
			EndDate:       now.AddDate(0, c.WarrantyMonths, 0),
			Status:        model.WarrantyActive,
			UpdatedAt:     now,
		}
		if err = s.warrantyRepo.Insert(ctx, tx, warranty); err != nil {
			return 0, fmt.Errorf("failed to create warranties: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to create warranties: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int("created", len(candidates)).
		Msg("warranties created for delivered order")

	return len(candidates), nil
}

// DeleteForOrder retires the order's warranties after a delivery
// reversal. Claims go first; the warranty rows cannot be removed while
// claims still reference them.
func (s *warrantyService) DeleteForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	tx, err := s.warrantyRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	warranties, err := s.warrantyRepo.ListByOrder(ctx, tx, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}
	if len(warranties) == 0 {
		if err = tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to delete warranties: %w", err)
		}
		return 0, nil
	}

	ids := make([]uuid.UUID, len(warranties))
	for i, w := range warranties {
		ids[i] = w.ID
	}

	claimsDeleted, err := s.warrantyRepo.DeleteClaims(ctx, tx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}

	deleted, err := s.warrantyRepo.Delete(ctx, tx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete warranties: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int64("warranties_deleted", deleted).
		Int64("claims_deleted", claimsDeleted).
		Msg("warranties retired after delivery reversal")

	return int(deleted), nil
}

// UpdateStatus mutates a single warranty's status.
func (s *warrantyService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus) error {
	ok, err := s.warrantyRepo.UpdateStatus(ctx, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update warranty status: %w", err)
	}
	if !ok {
		return model.ErrWarrantyNotFound
	}

	s.logger.Info().
		Str("warranty_id", id.String()).
		Str("status", string(status)).
		Msg("warranty status updated")

	return nil
}

// ExpireOutdated flips every active warranty past its end date to
// expired. A run that finds a sweep already in progress skips instead of
// queueing behind it.
func (s *warrantyService) ExpireOutdated(ctx context.Context) (int, error) {
	if !s.sweepMu.TryLock() {
		s.logger.Info().Msg("expiry sweep already running, skipping")
		return 0, nil
	}
	defer s.sweepMu.Unlock()

	expired, err := s.warrantyRepo.ExpireOutdated(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire warranties: %w", err)
	}

	if expired > 0 {
		s.logger.Info().Int64("expired", expired).Msg("outdated warranties expired")
	}

	return int(expired), nil
}

// FindExpiringSoon lists active warranties ending within the window.
func (s *warrantyService) FindExpiringSoon(ctx context.Context, withinDays int) ([]model.Warranty, error) {
	if withinDays <= 0 {
		return nil, model.NewValidationError("withinDays", "window must be at least one day")
	}

	warranties, err := s.warrantyRepo.FindExpiringSoon(ctx, time.Now(), withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring warranties: %w", err)
	}

	return warranties, nil
}

// generateWarrantyCode returns a globally unique warranty code.
func generateWarrantyCode() string {
	return "WTY-" + strings.ToUpper(uuid.NewString())
}
