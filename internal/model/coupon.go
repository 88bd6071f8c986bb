package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherType classifies how an applied voucher discounts a cart.
type VoucherType string

// Supported voucher types. Anything else is treated as no discount.
const (
	VoucherPercent  VoucherType = "percent"
	VoucherAmount   VoucherType = "amount"
	VoucherFreeShip VoucherType = "freeship"
)

// Voucher is the discount proposed at checkout time. It is not yet
// necessarily backed by a stored coupon row; the resolver provisions one
// on first use of the code.
type Voucher struct {
	Code  string          `json:"code"`
	Type  VoucherType     `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Coupon is the persisted record of a discount code. Once IsUsed is set
// the coupon is terminal and can never be applied again.
type Coupon struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Code       string          `json:"code" db:"code"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
	IsUsed     bool            `json:"isUsed" db:"is_used"`
	CustomerID *uuid.UUID      `json:"customerId,omitempty" db:"customer_id"`
	CreatedAt  *time.Time      `json:"createdAt,omitempty" db:"created_at"`
	UsedAt     *time.Time      `json:"usedAt,omitempty" db:"used_at"`
}
