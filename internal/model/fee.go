package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Well-known fee row names read by the pricing engine.
const (
	FeeShipping = "Shipping"
	FeeVAT      = "VAT"
)

// Fee is a named pricing configuration row. Shipping uses Value as a flat
// fee waived once the subtotal reaches Threshold; VAT uses Value as a
// percentage and ignores Threshold. Fees are read-only input to pricing.
type Fee struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Value     decimal.Decimal  `json:"value" db:"value"`
	Threshold *decimal.Decimal `json:"threshold,omitempty" db:"threshold"`
}
