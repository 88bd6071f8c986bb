package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a perfume in the catalogue. Cart lines reference
// products by name; a line that matches no product gets a placeholder row
// (unpublished, zero stock) so the order detail keeps a valid reference.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Stock          int             `json:"stock" db:"stock"`
	Published      bool            `json:"published" db:"published"`
	WarrantyMonths int             `json:"warrantyMonths" db:"warranty_months"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}
