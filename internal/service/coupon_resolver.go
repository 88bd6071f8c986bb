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
	"github.com/shopspring/decimal"
)

// couponResolver implements CouponResolver.
type couponResolver struct {
	coupons    repository.CouponRepository
	expiryDays int
	logger     zerolog.Logger
}

// NewCouponResolver creates a coupon resolver. Coupons provisioned for
// first-seen voucher codes expire expiryDays after creation.
func NewCouponResolver(coupons repository.CouponRepository, expiryDays int, logger zerolog.Logger) CouponResolver {
	return &couponResolver{
		coupons:    coupons,
		expiryDays: expiryDays,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Resolve returns the stored coupon for an applied voucher. An existing
// row is reused as-is; its amount is never touched. A used or expired
// coupon is rejected so a consumed code cannot be replayed.
func (s *couponResolver) Resolve(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, voucher *model.Voucher) (*model.Coupon, error) {
	if voucher == nil {
		return nil, nil
	}

	existing, err := s.coupons.GetByCode(ctx, tx, voucher.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve coupon: %w", err)
	}
	if existing != nil {
		return s.checkUsable(existing)
	}

	now := time.Now()
	expiresAt := now.AddDate(0, 0, s.expiryDays)

	// Only amount vouchers carry their value onto the coupon row; the
	// discount of percent and freeship vouchers is derived at pricing
	// time, not stored.
	amount := decimal.Zero
	if voucher.Type == model.VoucherAmount {
		amount = voucher.Value
	}

	coupon := &model.Coupon{
		ID:         uuid.New(),
		Code:       voucher.Code,
		Amount:     amount,
		ExpiresAt:  &expiresAt,
		IsUsed:     false,
		CustomerID: &customerID,
		CreatedAt:  &now,
	}

	inserted, err := s.coupons.Insert(ctx, tx, coupon)
	if err != nil {
		return nil, fmt.Errorf("failed to provision coupon: %w", err)
	}
	if inserted {
		s.logger.Debug().
			Str("code", coupon.Code).
			Str("coupon_id", coupon.ID.String()).
			Msg("coupon provisioned")
		return coupon, nil
	}

	// A concurrent checkout provisioned the same code first; re-fetch
	// once and proceed with the winner.
	s.logger.Debug().Str("code", voucher.Code).Msg("coupon code raced, re-fetching")

	existing, err = s.coupons.GetByCode(ctx, tx, voucher.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch coupon: %w", err)
	}
	if existing == nil {
		return nil, model.NewDomainError(model.ErrCodeInternalError, "coupon vanished after insert conflict")
	}

	return s.checkUsable(existing)
}

// MarkUsed consumes the coupon. A coupon that was consumed concurrently
// surfaces as ErrCouponAlreadyUsed and rolls the checkout back.
func (s *couponResolver) MarkUsed(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) error {
	ok, err := s.coupons.MarkUsed(ctx, tx, coupon.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark coupon used: %w", err)
	}
	if !ok {
		s.logger.Warn().
			Str("code", coupon.Code).
			Str("coupon_id", coupon.ID.String()).
			Msg("coupon consumed concurrently")
		return model.ErrCouponAlreadyUsed
	}

	s.logger.Debug().
		Str("code", coupon.Code).
		Str("coupon_id", coupon.ID.String()).
		Msg("coupon marked used")

	return nil
}

func (s *couponResolver) checkUsable(coupon *model.Coupon) (*model.Coupon, error) {
	if coupon.IsUsed {
		s.logger.Warn().Str("code", coupon.Code).Msg("coupon already used")
		return nil, model.ErrCouponAlreadyUsed
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		s.logger.Warn().
			Str("code", coupon.Code).
			Time("expired_at", *coupon.ExpiresAt).
			Msg("coupon expired")
		return nil, model.ErrCouponExpired
	}
	return coupon, nil
}
