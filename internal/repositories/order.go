package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"online-bookstore/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository handles order data operations. Orders are created only by
// the checkout repository; everything here is reads and status transitions.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderSearchFilters represents filters for order search
type OrderSearchFilters struct {
	UserID   int
	Status   models.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
	SortBy   string // "created_at", "total_amount", "status"
	SortDesc bool
}

const orderColumns = "id, user_id, status, total_amount, shipping_address, shipping_cost, notes, tracking_number, created_at, updated_at"

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.ShippingAddress,
		&order.ShippingCost,
		&order.Notes,
		&order.TrackingNumber,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID retrieves an order with its lines
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.GetItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetItems retrieves the lines of an order ordered by book id
func (r *OrderRepository) GetItems(orderID int) ([]*models.OrderItem, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, book_id, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY book_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateStatus moves an order to a new status. Transitions are validated
// against the state machine: processing -> shipped -> delivered, with
// cancellation allowed before delivery. Delivered and cancelled are
// terminal. The row is locked during the transition so two concurrent
// updates cannot both pass the same validation.
func (r *OrderRepository) UpdateStatus(id int, status models.OrderStatus, trackingNumber string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", models.ErrInvalidInput, order.Status, status)
	}

	now := time.Now()
	if trackingNumber == "" {
		trackingNumber = order.TrackingNumber
	}
	_, err = tx.Exec(`
		UPDATE orders
		SET status = $2, tracking_number = $3, updated_at = $4
		WHERE id = $1`, id, status, trackingNumber, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	order.Status = status
	order.TrackingNumber = trackingNumber
	order.UpdatedAt = now
	return order, nil
}

// Search searches for orders with filters and pagination
func (r *OrderRepository) Search(filters OrderSearchFilters) ([]*models.Order, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, filters.UserID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filters.DateTo)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		switch filters.SortBy {
		case "created_at", "total_amount", "status":
			orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get order count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// GetByUser retrieves a user's orders, newest first
func (r *OrderRepository) GetByUser(userID, limit, offset int) ([]*models.Order, int, error) {
	return r.Search(OrderSearchFilters{
		UserID:   userID,
		Limit:    limit,
		Offset:   offset,
		SortBy:   "created_at",
		SortDesc: true,
	})
}

// SalesRow is one order line with its order context, used by reporting
type SalesRow struct {
	OrderID   int             `json:"order_id"`
	BookID    int             `json:"book_id"`
	BookTitle string          `json:"book_title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// GetSalesRows retrieves order lines in a date range, oldest first
func (r *OrderRepository) GetSalesRows(dateFrom, dateTo *time.Time) ([]*SalesRow, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if dateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argIndex))
		args = append(args, *dateFrom)
		argIndex++
	}
	if dateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argIndex))
		args = append(args, *dateTo)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT oi.order_id, oi.book_id, b.title, oi.price, oi.quantity, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN books b ON b.id = oi.book_id
		%s
		ORDER BY o.created_at ASC, oi.id ASC`, whereClause)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales rows: %w", err)
	}
	defer rows.Close()

	var result []*SalesRow
	for rows.Next() {
		row := &SalesRow{}
		if err := rows.Scan(&row.OrderID, &row.BookID, &row.BookTitle, &row.Price, &row.Quantity, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales rows: %w", err)
	}

	return result, nil
}

// TopBook is one entry of the best-sellers report
type TopBook struct {
	BookID      int             `json:"book_id"`
	Title       string          `json:"title"`
	TotalSold   int             `json:"total_sold"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// GetTopBooks retrieves the best-selling books by committed quantity
func (r *OrderRepository) GetTopBooks(limit int) ([]*TopBook, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT oi.book_id, b.title, SUM(oi.quantity), SUM(oi.price * oi.quantity)
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		GROUP BY oi.book_id, b.title
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top books: %w", err)
	}
	defer rows.Close()

	var top []*TopBook
	for rows.Next() {
		entry := &TopBook{}
		if err := rows.Scan(&entry.BookID, &entry.Title, &entry.TotalSold, &entry.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan top book: %w", err)
		}
		top = append(top, entry)
	}

	return top, rows.Err()
}

// UpsertDailyStats folds an order into the daily sales aggregates. Called by
// the order event subscriber, never directly by checkout.
func (r *OrderRepository) UpsertDailyStats(day time.Time, orders, booksSold int, revenue decimal.Decimal, cancelled int) error {
	_, err := r.db.Exec(`
		INSERT INTO sales_stats (date, total_orders, total_books_sold, total_revenue, cancelled_orders, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE SET
			total_orders = sales_stats.total_orders + EXCLUDED.total_orders,
			total_books_sold = sales_stats.total_books_sold + EXCLUDED.total_books_sold,
			total_revenue = sales_stats.total_revenue + EXCLUDED.total_revenue,
			cancelled_orders = sales_stats.cancelled_orders + EXCLUDED.cancelled_orders,
			updated_at = EXCLUDED.updated_at`,
		day.Format("2006-01-02"), orders, booksSold, revenue, cancelled, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}

// GetOrderCount returns the total number of orders
func (r *OrderRepository) GetOrderCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get order count: %w", err)
	}
	return count, nil
}
