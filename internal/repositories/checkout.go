package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"online-bookstore/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CheckoutRepository converts a user's cart into a committed order. It is
// the only writer that creates orders, and it does all of its work in a
// single transaction: stock validation, order and line inserts, stock
// debits and cart clearing either all commit or all roll back.
type CheckoutRepository struct {
	db            *sql.DB
	lockTimeoutMS int
}

// NewCheckoutRepository creates a new checkout repository. lockTimeoutMS
// bounds how long each checkout waits on inventory row locks; zero disables
// the bound.
func NewCheckoutRepository(db *sql.DB, lockTimeoutMS int) *CheckoutRepository {
	return &CheckoutRepository{db: db, lockTimeoutMS: lockTimeoutMS}
}

// CreateOrderFromCart performs the whole checkout for one user.
//
// Inventory rows are locked in ascending book id order. Two concurrent
// checkouts that share two or more books always request those locks in the
// same order, so they cannot deadlock; the loser of each lock simply waits.
// Validation and debit happen under the same continuously-held lock, which
// closes the check-then-act race: once a line passes validation its debit
// cannot fail.
func (r *CheckoutRepository) CreateOrderFromCart(userID int, req *models.CheckoutRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Empty-cart check happens before any transaction is opened
	lines, err := r.getCartLines(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if r.lockTimeoutMS > 0 {
		if _, err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	bookIDs := make([]int, 0, len(lines))
	for bookID := range lines {
		bookIDs = append(bookIDs, bookID)
	}
	sort.Ints(bookIDs)

	// Phase 1: lock every inventory row the cart touches and validate
	// availability. The price is read in the same statement, under the same
	// lock, so it cannot drift before it is snapshotted below.
	prices := make(map[int]decimal.Decimal, len(bookIDs))
	for _, bookID := range bookIDs {
		quantity := lines[bookID]

		var stock, reserved int
		var price decimal.Decimal
		var active bool
		err := tx.QueryRow(`
			SELECT i.stock, i.reserved, b.price, b.is_active
			FROM inventory i
			JOIN books b ON b.id = i.book_id
			WHERE i.book_id = $1
			FOR UPDATE OF i`, bookID).Scan(&stock, &reserved, &price, &active)

		if err == sql.ErrNoRows {
			return nil, &models.BookUnavailableError{BookID: bookID}
		}
		if err != nil {
			if isLockTimeout(err) {
				return nil, models.ErrLockTimeout
			}
			return nil, fmt.Errorf("failed to lock inventory for book %d: %w", bookID, err)
		}
		if !active {
			return nil, &models.BookUnavailableError{BookID: bookID}
		}

		available := stock - reserved
		if available < 0 {
			available = 0
		}
		if quantity > available {
			return nil, &models.InsufficientStockError{
				BookID:    bookID,
				Requested: quantity,
				Available: available,
			}
		}

		prices[bookID] = price
	}

	// Phase 2: all lines validated, locks still held. Create the order,
	// snapshot prices into lines, debit stock and accumulate the total with
	// exact decimal arithmetic.
	now := time.Now()
	order := &models.Order{
		UserID:          userID,
		Status:          models.OrderProcessing,
		TotalAmount:     decimal.Zero,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    decimal.Zero,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = tx.QueryRow(`
		INSERT INTO orders (user_id, status, total_amount, shipping_address, shipping_cost, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		order.UserID, order.Status, order.TotalAmount, order.ShippingAddress,
		order.ShippingCost, order.Notes, now, now,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	total := decimal.Zero
	for _, bookID := range bookIDs {
		quantity := lines[bookID]
		price := prices[bookID]

		item := &models.OrderItem{
			OrderID:  order.ID,
			BookID:   bookID,
			Price:    price,
			Quantity: quantity,
		}
		err = tx.QueryRow(`
			INSERT INTO order_items (order_id, book_id, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			item.OrderID, item.BookID, item.Price, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order line for book %d: %w", bookID, err)
		}

		// Guaranteed to succeed: availability was checked under this same
		// lock. GREATEST floors at zero defensively.
		_, err = tx.Exec(`
			UPDATE inventory
			SET stock = GREATEST(stock - $2, 0), updated_at = $3
			WHERE book_id = $1`, bookID, quantity, now)
		if err != nil {
			return nil, fmt.Errorf("failed to debit stock for book %d: %w", bookID, err)
		}

		total = total.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
		order.Items = append(order.Items, item)
	}

	order.TotalAmount = total
	if _, err = tx.Exec(`UPDATE orders SET total_amount = $2 WHERE id = $1`, order.ID, total); err != nil {
		return nil, fmt.Errorf("failed to set order total: %w", err)
	}

	// The cart empties only when the checkout commits; any failure above
	// leaves it untouched so the user can retry.
	_, err = tx.Exec(`
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isLockTimeout(err) {
			return nil, models.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

// getCartLines returns the user's cart as a book id -> quantity map
func (r *CheckoutRepository) getCartLines(userID int) (map[int]int, error) {
	rows, err := r.db.Query(`
		SELECT ci.book_id, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int]int)
	for rows.Next() {
		var bookID, quantity int
		if err := rows.Scan(&bookID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		if quantity <= 0 {
			// Cart store invariant violation; abort rather than guess
			return nil, fmt.Errorf("%w: cart line for book %d has quantity %d", models.ErrInvalidInput, bookID, quantity)
		}
		lines[bookID] = quantity
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// isLockTimeout reports whether err is a Postgres lock acquisition timeout:
// 55P03 lock_not_available (NOWAIT/lock_timeout) or 57014 query_canceled
// (statement_timeout firing while blocked on a lock).
func isLockTimeout(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "55P03" || pqErr.Code == "57014"
	}
	return false
}
