package repository

import (
	"context"
	"time"

	"perfume-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Write-path methods take an explicit pgx.Tx so every checkout and
// warranty mutation runs inside one caller-owned transaction. Read-only
// lookups that never join a write path run on the pool directly.

// CustomerRepository defines customer data access operations.
type CustomerRepository interface {
	// GetByEmail retrieves a customer by email, or nil when absent.
	GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*model.Customer, error)

	// Insert adds a new customer. It reports false without error when a
	// concurrent insert already claimed the email (unique constraint),
	// letting the caller re-fetch instead of failing the transaction.
	Insert(ctx context.Context, tx pgx.Tx, customer *model.Customer) (bool, error)

	// UpdateProfile refreshes the mutable profile fields.
	UpdateProfile(ctx context.Context, tx pgx.Tx, id uuid.UUID, name, phone string) error
}

// AddressRepository defines shipping-address data access operations.
type AddressRepository interface {
	// Insert adds a new shipping address.
	Insert(ctx context.Context, tx pgx.Tx, address *model.ShippingAddress) error

	// ClearDefault clears is_default on every address of the customer.
	ClearDefault(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error)
}

// CouponRepository defines coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its code, or nil when absent.
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)

	// Insert provisions a new coupon. It reports false without error when
	// the code already exists (unique constraint).
	Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error)

	// MarkUsed flips is_used on an unused coupon. It reports false when
	// the coupon was already consumed.
	MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time) (bool, error)
}

// FeeRepository defines fee configuration lookups.
type FeeRepository interface {
	// GetByNames retrieves the named fee rows. Missing names are simply
	// absent from the result; pricing applies its fallback.
	GetByNames(ctx context.Context, tx pgx.Tx, names []string) ([]model.Fee, error)
}

// ProductRepository defines product data access operations.
type ProductRepository interface {
	// GetByName retrieves a product by its unique name, or nil when absent.
	GetByName(ctx context.Context, tx pgx.Tx, name string) (*model.Product, error)

	// Insert adds a new product row.
	Insert(ctx context.Context, tx pgx.Tx, product *model.Product) error
}

// OrderRepository defines order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// InsertOrder inserts a new order within the provided transaction.
	InsertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// InsertDetails inserts the order's line items.
	InsertDetails(ctx context.Context, tx pgx.Tx, details []model.OrderDetail) error

	// GetByID retrieves a committed order with its line items, or nil
	// when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderDetail, error)

	// GetForUpdate retrieves an order inside the transaction with a row
	// lock, or nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus persists a new order status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, updatedAt time.Time) error
}

// WarrantyCandidate is an order detail eligible for warranty creation:
// its product has a positive warranty period and no warranty exists yet.
type WarrantyCandidate struct {
	OrderDetailID  uuid.UUID
	CustomerID     uuid.UUID
	WarrantyMonths int
}

// WarrantyRepository defines warranty data access operations.
type WarrantyRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// EligibleDetails lists the order's details that should receive a
	// warranty. Details that already have one are excluded, which makes
	// warranty creation idempotent.
	EligibleDetails(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]WarrantyCandidate, error)

	// Insert adds a warranty row.
	Insert(ctx context.Context, tx pgx.Tx, warranty *model.Warranty) error

	// ListByOrder lists all warranties covering the order's details.
	ListByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.Warranty, error)

	// DeleteClaims removes all claims of the given warranties.
	DeleteClaims(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error)

	// Delete removes the given warranties. Their claims must already be
	// gone; the store does not cascade.
	Delete(ctx context.Context, tx pgx.Tx, warrantyIDs []uuid.UUID) (int64, error)

	// UpdateStatus sets a warranty's status. It reports false when no
	// such warranty exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.WarrantyStatus, updatedAt time.Time) (bool, error)

	// ExpireOutdated flips every active warranty whose end date has
	// passed to expired and returns the number of rows changed.
	ExpireOutdated(ctx context.Context, now time.Time) (int64, error)

	// FindExpiringSoon lists active warranties ending within the window.
	FindExpiringSoon(ctx context.Context, now time.Time, withinDays int) ([]model.Warranty, error)
}
