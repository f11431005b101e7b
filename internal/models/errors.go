package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateEntry   = errors.New("duplicate entry")

	// ErrInvalidCredentials covers unknown email, wrong password, and
	// blocked accounts alike so login responses do not leak which it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmptyCart is returned by checkout when the user's cart has no lines.
	// No transaction is opened in that case.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrLockTimeout is returned when the inventory row locks could not be
	// acquired within the statement timeout. Safe to retry: a failed attempt
	// commits nothing.
	ErrLockTimeout = errors.New("timed out waiting for inventory locks")
)

// InsufficientStockError reports the first cart line (in ascending book id
// order) whose quantity exceeds available stock. The whole checkout rolls
// back; no inventory is mutated for any book in the cart.
type InsufficientStockError struct {
	BookID    int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d (requested: %d, available: %d)", e.BookID, e.Requested, e.Available)
}

// BookUnavailableError reports a cart line whose book was deleted or
// deactivated between cart-add and checkout. The line is never silently
// skipped; the whole checkout fails.
type BookUnavailableError struct {
	BookID int
}

func (e *BookUnavailableError) Error() string {
	return fmt.Sprintf("book %d is no longer available", e.BookID)
}
