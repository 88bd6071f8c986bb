package service

import (
	"context"
	"fmt"
	"time"

	"perfume-store/internal/model"
	"perfume-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	warranties WarrantyService
	logger     zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, warranties WarrantyService, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		warranties: warranties,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order with its line items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, details, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	return &model.OrderResponse{Order: order, Items: details}, nil
}

// UpdateStatus applies a validated status transition. The status change
// commits first; the warranty lifecycle then follows it in its own
// transaction, keyed on whether the order entered or left delivered.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus model.OrderStatus) (*StatusChangeResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	oldStatus := order.Status
	if !oldStatus.CanTransitionTo(newStatus) {
		err = &model.InvalidTransitionError{From: oldStatus, To: newStatus}
		return nil, err
	}

	now := time.Now()
	if err = s.orderRepo.UpdateStatus(ctx, tx, id, newStatus, now); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = newStatus
	order.UpdatedAt = now

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", oldStatus.String()).
		Str("to", newStatus.String()).
		Msg("order status updated")

	result := &StatusChangeResult{Order: order}

	// The status is durable at this point; a warranty failure is
	// surfaced, not swallowed, so the operator knows to retry the sync.
	switch {
	case newStatus == model.OrderDelivered && oldStatus != model.OrderDelivered:
		created, werr := s.warranties.CreateForOrder(ctx, id)
		if werr != nil {
			return nil, fmt.Errorf("order status updated but warranty creation failed: %w", werr)
		}
		result.WarrantiesCreated = created

	case oldStatus == model.OrderDelivered && newStatus != model.OrderDelivered:
		deleted, werr := s.warranties.DeleteForOrder(ctx, id)
		if werr != nil {
			return nil, fmt.Errorf("order status updated but warranty removal failed: %w", werr)
		}
		result.WarrantiesDeleted = deleted
	}

	return result, nil
}
