package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Cart represents a user's shopping cart. One cart per user, created lazily
// on first interaction and persisted until checkout empties it. The cart is
// owned entirely by the buyer session and needs no cross-user locking.
type Cart struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem represents one (book, quantity) line in a cart. Each book appears
// at most once; adding an already-present book merges into the existing line.
type CartItem struct {
	ID       int `json:"id" db:"id"`
	CartID   int `json:"cart_id" db:"cart_id"`
	BookID   int `json:"book_id" db:"book_id"`
	Quantity int `json:"quantity" db:"quantity"`
}

// CartItemWithBook represents a cart line joined with catalog data for display
type CartItemWithBook struct {
	CartItem
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Available int             `json:"available" db:"available"`
}

// Subtotal returns price multiplied by quantity using exact decimal arithmetic
func (c *CartItemWithBook) Subtotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartAddRequest represents a request to add a book to the cart
type CartAddRequest struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

// Validate validates a cart add request. Quantity must be strictly positive;
// zero or negative quantities are rejected here so they never reach checkout.
func (req *CartAddRequest) Validate() error {
	if req.BookID <= 0 {
		return errors.New("book id is required")
	}
	if req.Quantity <= 0 {
		return errors.New("quantity must be at least 1")
	}
	if req.Quantity > 100 {
		return errors.New("quantity cannot exceed 100 per line")
	}
	return nil
}

// CartRemoveRequest represents a request to remove a book from the cart
type CartRemoveRequest struct {
	BookID int `json:"book_id"`
}

// Validate validates a cart remove request
func (req *CartRemoveRequest) Validate() error {
	if req.BookID <= 0 {
		return errors.New("book id is required")
	}
	return nil
}
