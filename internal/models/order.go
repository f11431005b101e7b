package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Order represents a committed order. Created exactly once per successful
// checkout with status processing. The line set is immutable after creation;
// cancellation changes status only.
type Order struct {
	ID              int             `json:"id" db:"id"`
	UserID          int             `json:"user_id" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Notes           string          `json:"notes" db:"notes"`
	TrackingNumber  string          `json:"tracking_number" db:"tracking_number"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items,omitempty"`
}

// OrderItem represents one line of an order. Price is the unit price
// snapshotted at checkout time; it must remain stable even if the book's
// catalog price changes later (accounting invariant).
type OrderItem struct {
	ID       int             `json:"id" db:"id"`
	OrderID  int             `json:"order_id" db:"order_id"`
	BookID   int             `json:"book_id" db:"book_id"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Quantity int             `json:"quantity" db:"quantity"`
}

// LineTotal returns price multiplied by quantity using exact decimal arithmetic
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutRequest carries the shipping details for a checkout
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// Validate validates checkout input
func (req *CheckoutRequest) Validate() error {
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return errors.New("shipping address is required")
	}
	if len(req.ShippingAddress) > 1000 {
		return errors.New("shipping address must be less than 1000 characters")
	}
	return nil
}

// ValidStatus reports whether s is a known order status
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the order may move to the target status.
// Allowed: processing -> shipped, shipped -> delivered,
// processing|shipped -> cancelled. Delivered and cancelled are terminal.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	switch o.Status {
	case OrderProcessing:
		return target == OrderShipped || target == OrderCancelled
	case OrderShipped:
		return target == OrderDelivered || target == OrderCancelled
	}
	return false
}

// IsTerminal reports whether the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderProcessing:
		return "Processing"
	case OrderShipped:
		return "Shipped"
	case OrderDelivered:
		return "Delivered"
	case OrderCancelled:
		return "Cancelled"
	default:
		return string(o.Status)
	}
}
