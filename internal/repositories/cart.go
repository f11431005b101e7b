package repositories

import (
	"database/sql"
	"fmt"

	"online-bookstore/internal/models"
)

// CartRepository handles cart data operations. A cart has exactly one owner,
// so no cross-user locking is needed; the unique (cart_id, book_id)
// constraint keeps concurrent double-submits from duplicating lines.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreate returns the user's cart, creating it on first interaction.
// Explicit upsert-with-default; plain reads never create rows.
func (r *CartRepository) GetOrCreate(userID int) (*models.Cart, error) {
	cart := &models.Cart{}
	err := r.db.QueryRow(`
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a book to the user's cart. Adding an already-present book
// increments the existing line's quantity rather than duplicating it.
func (r *CartRepository) AddItem(userID int, req *models.CartAddRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	cart, err := r.GetOrCreate(userID)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO cart_items (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cart.ID, req.BookID, req.Quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.ErrBookNotFound
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// SetItemQuantity replaces the quantity of an existing line
func (r *CartRepository) SetItemQuantity(userID, bookID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be at least 1", models.ErrInvalidInput)
	}

	result, err := r.db.Exec(`
		UPDATE cart_items
		SET quantity = $3
		WHERE book_id = $2
		  AND cart_id = (SELECT id FROM carts WHERE user_id = $1)`,
		userID, bookID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrBookNotFound
	}

	return nil
}

// RemoveItem removes a book from the user's cart
func (r *CartRepository) RemoveItem(userID, bookID int) error {
	_, err := r.db.Exec(`
		DELETE FROM cart_items
		WHERE book_id = $2
		  AND cart_id = (SELECT id FROM carts WHERE user_id = $1)`, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// GetItems retrieves the user's cart lines joined with catalog data,
// ordered by book id
func (r *CartRepository) GetItems(userID int) ([]*models.CartItemWithBook, error) {
	rows, err := r.db.Query(`
		SELECT ci.id, ci.cart_id, ci.book_id, ci.quantity,
		       b.title, b.price, GREATEST(i.stock - i.reserved, 0)
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN books b ON b.id = ci.book_id
		JOIN inventory i ON i.book_id = ci.book_id
		WHERE c.user_id = $1
		ORDER BY ci.book_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	var items []*models.CartItemWithBook
	for rows.Next() {
		item := &models.CartItemWithBook{}
		err := rows.Scan(
			&item.ID, &item.CartID, &item.BookID, &item.Quantity,
			&item.Title, &item.Price, &item.Available,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Clear removes all lines from the user's cart
func (r *CartRepository) Clear(userID int) error {
	_, err := r.db.Exec(`
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
