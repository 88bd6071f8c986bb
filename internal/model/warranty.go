package model

import (
	"time"

	"github.com/google/uuid"
)

// WarrantyStatus is the closed set of warranty states.
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
)

// ParseWarrantyStatus validates an untrusted warranty status string.
func ParseWarrantyStatus(s string) (WarrantyStatus, error) {
	switch status := WarrantyStatus(s); status {
	case WarrantyActive, WarrantyExpired:
		return status, nil
	default:
		return "", NewDomainError(ErrCodeInvalidStatus, "unknown warranty status: "+s)
	}
}

// Warranty covers exactly one order detail. EndDate is StartDate plus the
// product's warranty period in months.
type Warranty struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	OrderDetailID uuid.UUID      `json:"orderDetailId" db:"order_detail_id"`
	CustomerID    uuid.UUID      `json:"customerId" db:"customer_id"`
	Code          string         `json:"code" db:"code"`
	StartDate     time.Time      `json:"startDate" db:"start_date"`
	EndDate       time.Time      `json:"endDate" db:"end_date"`
	Status        WarrantyStatus `json:"status" db:"status"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}

// WarrantyClaim is a claim filed against a warranty. Claims must be
// deleted before their parent warranty; the store does not cascade.
type WarrantyClaim struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WarrantyID  uuid.UUID `json:"warrantyId" db:"warranty_id"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
