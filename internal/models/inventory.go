package models

import "time"

// Inventory represents the stock record for a single book. One row per book,
// created alongside the book with zero stock.
//
// Reserved is kept for schema compatibility with earlier reservation designs;
// the checkout path never increments it. It still participates in the
// Available calculation, so a nonzero value set administratively does hold
// units back from sale.
type Inventory struct {
	BookID    int       `json:"book_id" db:"book_id"`
	Stock     int       `json:"stock" db:"stock"`
	Reserved  int       `json:"reserved" db:"reserved"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Available returns the number of units checkout may consume: stock minus
// reserved, floored at zero. This is the only sellable quantity.
func (i *Inventory) Available() int {
	if avail := i.Stock - i.Reserved; avail > 0 {
		return avail
	}
	return 0
}

// StockUpdateRequest represents an administrative stock adjustment
type StockUpdateRequest struct {
	Stock    *int `json:"stock,omitempty"`    // absolute value, replaces current stock
	Restock  *int `json:"restock,omitempty"`  // delta added to current stock
	Reserved *int `json:"reserved,omitempty"` // absolute value, replaces current reserved
}

// Validate validates a stock adjustment request
func (req *StockUpdateRequest) Validate() error {
	if req.Stock == nil && req.Restock == nil && req.Reserved == nil {
		return ErrInvalidInput
	}
	if req.Stock != nil && *req.Stock < 0 {
		return ErrInvalidInput
	}
	if req.Restock != nil && *req.Restock <= 0 {
		return ErrInvalidInput
	}
	if req.Reserved != nil && *req.Reserved < 0 {
		return ErrInvalidInput
	}
	return nil
}
