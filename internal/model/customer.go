package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMembership is the tier seeded for customers created on their
// first checkout.
const DefaultMembership = "standard"

// Customer represents a storefront customer. Email is the natural key:
// checkouts match existing customers by email and refresh the mutable
// profile fields (name, phone).
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone" db:"phone"`
	Membership string    `json:"membership" db:"membership"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ShippingAddress belongs to exactly one customer. At most one address
// per customer may be the default; setting a new default clears the flag
// on all siblings in the same transaction.
type ShippingAddress struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CustomerID    uuid.UUID `json:"customerId" db:"customer_id"`
	RecipientName string    `json:"recipientName" db:"recipient_name"`
	Phone         string    `json:"phone" db:"phone"`
	Province      string    `json:"province" db:"province"`
	District      string    `json:"district" db:"district"`
	Ward          string    `json:"ward" db:"ward"`
	AddressLine   string    `json:"addressLine" db:"address_line"`
	IsDefault     bool      `json:"isDefault" db:"is_default"`
}
