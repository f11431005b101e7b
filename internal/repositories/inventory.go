package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-bookstore/internal/models"
)

// InventoryRepository is the single source of truth for how many units of a
// book can be sold right now. Every write to stock takes the same row lock
// as the checkout debit, so administrative adjustments can never race a
// concurrent checkout.
type InventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetByBookID retrieves the inventory record for a book
func (r *InventoryRepository) GetByBookID(bookID int) (*models.Inventory, error) {
	query := `
		SELECT book_id, stock, reserved, updated_at
		FROM inventory
		WHERE book_id = $1`

	inv := &models.Inventory{}
	err := r.db.QueryRow(query, bookID).Scan(&inv.BookID, &inv.Stock, &inv.Reserved, &inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	return inv, nil
}

// GetAvailable returns the sellable quantity for a book: stock minus
// reserved, floored at zero. Read-only, no locking.
func (r *InventoryRepository) GetAvailable(bookID int) (int, error) {
	var available int
	err := r.db.QueryRow(`
		SELECT GREATEST(stock - reserved, 0)
		FROM inventory
		WHERE book_id = $1`, bookID).Scan(&available)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, models.ErrBookNotFound
		}
		return 0, fmt.Errorf("failed to get availability: %w", err)
	}

	return available, nil
}

// EnsureRecord creates the inventory row for a book with zero stock if it
// does not exist yet. Explicit upsert-with-default; reads never create rows
// as a side effect.
func (r *InventoryRepository) EnsureRecord(bookID int) error {
	_, err := r.db.Exec(`
		INSERT INTO inventory (book_id, stock, reserved, updated_at)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (book_id) DO NOTHING`, bookID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure inventory record: %w", err)
	}
	return nil
}

// UpdateStock applies an administrative stock adjustment. The row is locked
// with FOR UPDATE for the duration of the write, the same discipline as the
// checkout debit, so adjustments and checkouts serialize per book.
func (r *InventoryRepository) UpdateStock(bookID int, req *models.StockUpdateRequest) (*models.Inventory, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inv := &models.Inventory{}
	err = tx.QueryRow(`
		SELECT book_id, stock, reserved
		FROM inventory
		WHERE book_id = $1
		FOR UPDATE`, bookID).Scan(&inv.BookID, &inv.Stock, &inv.Reserved)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock inventory: %w", err)
	}

	if req.Stock != nil {
		inv.Stock = *req.Stock
	}
	if req.Restock != nil {
		inv.Stock += *req.Restock
	}
	if req.Reserved != nil {
		inv.Reserved = *req.Reserved
	}

	now := time.Now()
	_, err = tx.Exec(`
		UPDATE inventory
		SET stock = $2, reserved = $3, updated_at = $4
		WHERE book_id = $1`, bookID, inv.Stock, inv.Reserved, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory update: %w", err)
	}

	inv.UpdatedAt = now
	return inv, nil
}
