package service

import (
	"context"

	"perfume-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CheckoutService creates orders from untrusted checkout input. The
// whole multi-entity write (customer, address, coupon, order, line
// items) commits as one unit or not at all.
type CheckoutService interface {
	// Checkout materialises an order. The returned response is re-read
	// from the store after commit.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error)
}

// CouponResolver owns the coupon lifecycle within a checkout
// transaction.
type CouponResolver interface {
	// Resolve returns the stored coupon for an applied voucher, reusing
	// an existing row by code or provisioning a new one. A nil voucher
	// resolves to a nil coupon.
	Resolve(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, voucher *model.Voucher) (*model.Coupon, error)

	// MarkUsed consumes the coupon. Must be invoked only after every
	// order row referencing it has been staged in the same transaction.
	MarkUsed(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) error
}

// StatusChangeResult reports what an order status change did, including
// the warranty rows it drove downstream.
type StatusChangeResult struct {
	Order             *model.Order `json:"order"`
	WarrantiesCreated int          `json:"warrantiesCreated"`
	WarrantiesDeleted int          `json:"warrantiesDeleted"`
}

// OrderService exposes the operator-facing order surface.
type OrderService interface {
	// GetByID retrieves an order with its line items, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus applies a validated status transition and drives the
	// warranty lifecycle: into delivered creates warranties, out of
	// delivered retires them.
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus model.OrderStatus) (*StatusChangeResult, error)
}

// WarrantyService manages warranty records derived from delivered
// orders. Counts report rows actually touched; zero with a nil error
// means nothing was eligible, never a swallowed failure.
type WarrantyService interface {
	// CreateForOrder creates one warranty per eligible order detail and
	// returns the number created. Idempotent per detail.
	CreateForOrder(ctx context.Context, orderID uuid.UUID) (int, error)

	// DeleteForOrder removes the order's warranties and their claims
	// (claims first) in one transaction, returning warranties deleted.
	DeleteForOrder(ctx context.Context, orderID uuid.UUID) (int, error)

	// UpdateStatus mutates a single warranty's status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus) error

	// ExpireOutdated flips every active warranty past its end date to
	// expired. Intended for the periodic sweep; overlapping runs are
	// skipped.
	ExpireOutdated(ctx context.Context) (int, error)

	// FindExpiringSoon lists active warranties ending within the window,
	// for notification purposes.
	FindExpiringSoon(ctx context.Context, withinDays int) ([]model.Warranty, error)
}
