package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"online-bookstore/internal/models"

	"github.com/lib/pq"
)

func setupCheckoutTestDB(t *testing.T) *sql.DB {
	// This would typically use a test database
	t.Skip("Database tests require test database setup")
	return nil
}

func TestIsLockTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"lock_not_available", &pq.Error{Code: "55P03"}, true},
		{"query_canceled", &pq.Error{Code: "57014"}, true},
		{"wrapped lock timeout", fmt.Errorf("query failed: %w", &pq.Error{Code: "55P03"}), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLockTimeout(tt.err); got != tt.want {
				t.Errorf("isLockTimeout(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCreateOrderFromCartValidation(t *testing.T) {
	// Validation happens before any database work, so a nil handle is safe
	repo := NewCheckoutRepository(nil, 0)

	_, err := repo.CreateOrderFromCart(1, &models.CheckoutRequest{})
	if err == nil {
		t.Fatal("expected error for missing shipping address")
	}
}

func TestCheckoutRepository_CreateOrderFromCart(t *testing.T) {
	db := setupCheckoutTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewCheckoutRepository(db, 5000)

	// Exercised against a seeded test database: a cart with two lines, the
	// first over-requesting stock, must fail atomically with no debit.
	_, err := repo.CreateOrderFromCart(1, &models.CheckoutRequest{ShippingAddress: "1 Main St"})
	if err != nil {
		var stockErr *models.InsufficientStockError
		if !errors.As(err, &stockErr) && !errors.Is(err, models.ErrEmptyCart) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
