package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states. The zero
// value is invalid; use ParseOrderStatus for untrusted input.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the allowed-transition table. Delivered may revert
// to Processing so an operator can undo a mistaken delivery mark; the
// warranty lifecycle follows that reversal. Cancelled is terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderPending, OrderDelivered, OrderCancelled},
	OrderDelivered:  {OrderProcessing},
	OrderCancelled:  {},
}

// ParseOrderStatus validates an untrusted status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", NewDomainError(ErrCodeInvalidStatus, "unknown order status: "+s)
	}
	return status, nil
}

// CanTransitionTo reports whether the status may change to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order represents a committed customer order.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customerId" db:"customer_id"`
	AddressID     uuid.UUID       `json:"addressId" db:"address_id"`
	CouponID      *uuid.UUID      `json:"couponId,omitempty" db:"coupon_id"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderDetail is one line item. UnitPrice is captured at order time and
// never re-read from the product, so later price changes cannot drift a
// committed order.
type OrderDetail struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	LineTotal decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// CartItem is one product-quantity-price tuple submitted at checkout.
// Products are matched by name.
type CartItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CheckoutRequest is the untrusted checkout input.
type CheckoutRequest struct {
	CustomerName  string       `json:"customerName"`
	CustomerEmail string       `json:"customerEmail"`
	CustomerPhone string       `json:"customerPhone"`
	Address       AddressInput `json:"address"`
	Items         []CartItem   `json:"items"`
	Voucher       *Voucher     `json:"voucher,omitempty"`
	PaymentMethod string       `json:"paymentMethod"`
	Notes         string       `json:"notes"`
}

// AddressInput holds the shipping address fields of a checkout request.
type AddressInput struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	District      string `json:"district"`
	Ward          string `json:"ward"`
	AddressLine   string `json:"addressLine"`
	SetDefault    bool   `json:"setDefault"`
}

// OrderResponse is the committed order as re-read after the transaction,
// never the in-memory objects built before commit.
type OrderResponse struct {
	Order *Order        `json:"order"`
	Items []OrderDetail `json:"items"`
}

// StatusChangeRequest is the operator order-status-change payload.
type StatusChangeRequest struct {
	Status string `json:"status"`
}
