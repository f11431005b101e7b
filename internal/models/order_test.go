package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   OrderStatus
		to     OrderStatus
		expect bool
	}{
		{"processing to shipped", OrderProcessing, OrderShipped, true},
		{"processing to cancelled", OrderProcessing, OrderCancelled, true},
		{"processing to delivered skips shipped", OrderProcessing, OrderDelivered, false},
		{"shipped to delivered", OrderShipped, OrderDelivered, true},
		{"shipped to cancelled", OrderShipped, OrderCancelled, true},
		{"shipped back to processing", OrderShipped, OrderProcessing, false},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"delivered cannot reship", OrderDelivered, OrderShipped, false},
		{"cancelled is terminal", OrderCancelled, OrderProcessing, false},
		{"cancelled cannot deliver", OrderCancelled, OrderDelivered, false},
		{"no self transition", OrderProcessing, OrderProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.from}
			if got := order.CanTransitionTo(tt.to); got != tt.expect {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expect)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderProcessing, OrderShipped} {
		if (&Order{Status: status}).IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderDelivered, OrderCancelled} {
		if !(&Order{Status: status}).IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		if !ValidStatus(status) {
			t.Errorf("%s should be valid", status)
		}
	}
	if ValidStatus("completed") {
		t.Error("unknown status should not be valid")
	}
	if ValidStatus("") {
		t.Error("empty status should not be valid")
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	item := &OrderItem{
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 3,
	}
	if got := item.LineTotal(); !got.Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("LineTotal() = %s, want 37.50", got)
	}

	// 3 * 10.10 must be exactly 30.30, never 30.299999...
	item = &OrderItem{
		Price:    decimal.RequireFromString("10.10"),
		Quantity: 3,
	}
	if got := item.LineTotal(); !got.Equal(decimal.RequireFromString("30.30")) {
		t.Errorf("LineTotal() = %s, want exactly 30.30", got)
	}
}

func TestCheckoutRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr bool
	}{
		{"valid", CheckoutRequest{ShippingAddress: "1 Main St, Springfield"}, false},
		{"missing address", CheckoutRequest{}, true},
		{"whitespace address", CheckoutRequest{ShippingAddress: "   "}, true},
		{"address too long", CheckoutRequest{ShippingAddress: strings.Repeat("x", 1001)}, true},
		{"notes are optional", CheckoutRequest{ShippingAddress: "1 Main St", Notes: "leave at door"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
