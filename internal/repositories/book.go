package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"online-bookstore/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// BookRepository handles catalog data operations
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// BookSearchFilters represents filters for book search
type BookSearchFilters struct {
	Query      string // Matches title or ISBN
	CategoryID int
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	ActiveOnly bool
	Limit      int
	Offset     int
	SortBy     string // "title", "price", "created_at"
	SortDesc   bool
}

const bookColumns = "id, title, isbn, description, category_id, price, pages, publication_date, is_active, created_at, updated_at"

// slugify lowercases a name and replaces non-alphanumeric runs with hyphens
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func scanBook(row interface{ Scan(...interface{}) error }) (*models.Book, error) {
	book := &models.Book{}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.ISBN,
		&book.Description,
		&book.CategoryID,
		&book.Price,
		&book.Pages,
		&book.PublicationDate,
		&book.IsActive,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Create creates a new book together with its empty inventory record and
// author links, in one transaction
func (r *BookRepository) Create(req *models.BookCreateRequest) (*models.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	book := &models.Book{}
	err = tx.QueryRow(`
		INSERT INTO books (title, isbn, description, category_id, price, pages, publication_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9)
		RETURNING `+bookColumns,
		req.Title, req.ISBN, req.Description, req.CategoryID, req.Price,
		req.Pages, req.PublicationDate, now, now,
	).Scan(
		&book.ID, &book.Title, &book.ISBN, &book.Description, &book.CategoryID,
		&book.Price, &book.Pages, &book.PublicationDate, &book.IsActive,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	for _, authorID := range req.AuthorIDs {
		if _, err := tx.Exec(`
			INSERT INTO book_authors (book_id, author_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, book.ID, authorID); err != nil {
			return nil, fmt.Errorf("failed to link author %d: %w", authorID, err)
		}
	}

	// Inventory row is created alongside the book with zero stock
	if _, err := tx.Exec(`
		INSERT INTO inventory (book_id, stock, reserved, updated_at)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (book_id) DO NOTHING`, book.ID, now); err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit book creation: %w", err)
	}

	return book, nil
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(id int) (*models.Book, error) {
	book, err := scanBook(r.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// GetWithDetails retrieves a book with category, authors, rating and
// availability attached
func (r *BookRepository) GetWithDetails(id int) (*models.BookWithDetails, error) {
	detail := &models.BookWithDetails{Book: &models.Book{}}
	err := r.db.QueryRow(`
		SELECT b.id, b.title, b.isbn, b.description, b.category_id, b.price,
		       b.pages, b.publication_date, b.is_active, b.created_at, b.updated_at,
		       c.name,
		       COALESCE(AVG(r.rating), 0), COUNT(r.id),
		       GREATEST(i.stock - i.reserved, 0)
		FROM books b
		JOIN categories c ON c.id = b.category_id
		JOIN inventory i ON i.book_id = b.id
		LEFT JOIN reviews r ON r.book_id = b.id
		WHERE b.id = $1
		GROUP BY b.id, c.name, i.stock, i.reserved`, id).Scan(
		&detail.Book.ID, &detail.Book.Title, &detail.Book.ISBN, &detail.Book.Description,
		&detail.Book.CategoryID, &detail.Book.Price, &detail.Book.Pages,
		&detail.Book.PublicationDate, &detail.Book.IsActive, &detail.Book.CreatedAt,
		&detail.Book.UpdatedAt, &detail.CategoryName,
		&detail.AverageRating, &detail.ReviewCount, &detail.Available,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book details: %w", err)
	}

	authors, err := r.getAuthorNames(id)
	if err != nil {
		return nil, err
	}
	detail.Authors = authors

	return detail, nil
}

func (r *BookRepository) getAuthorNames(bookID int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT a.first_name, a.last_name
		FROM authors a
		JOIN book_authors ba ON ba.author_id = a.id
		WHERE ba.book_id = $1
		ORDER BY a.last_name, a.first_name`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get authors: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var first, last string
		if err := rows.Scan(&first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		names = append(names, strings.TrimSpace(first+" "+last))
	}

	return names, rows.Err()
}

// Search searches for books with filters and pagination
func (r *BookRepository) Search(filters BookSearchFilters) ([]*models.Book, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR isbn = $%d)", argIndex, argIndex+1))
		args = append(args, "%"+filters.Query+"%", filters.Query)
		argIndex += 2
	}

	if filters.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, filters.CategoryID)
		argIndex++
	}

	if filters.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filters.PriceMin)
		argIndex++
	}

	if filters.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filters.PriceMax)
		argIndex++
	}

	if filters.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY title ASC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		switch filters.SortBy {
		case "title", "price", "created_at":
			orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get book count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		bookColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating books: %w", err)
	}

	return books, total, nil
}

// Update updates a book's editable fields
func (r *BookRepository) Update(id int, req *models.BookUpdateRequest) (*models.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	book, err := scanBook(r.db.QueryRow(`
		UPDATE books
		SET title = $2, description = $3, category_id = $4, price = $5, is_active = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+bookColumns,
		id, req.Title, req.Description, req.CategoryID, req.Price, req.IsActive, time.Now()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// Delete deletes a book. Deletion is refused while any committed order line
// references the book; deactivation is the supported path for books that
// have sold.
func (r *BookRepository) Delete(id int) error {
	var orderLines int
	err := r.db.QueryRow("SELECT COUNT(*) FROM order_items WHERE book_id = $1", id).Scan(&orderLines)
	if err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if orderLines > 0 {
		return fmt.Errorf("cannot delete book %d: referenced by %d order lines", id, orderLines)
	}

	result, err := r.db.Exec("DELETE FROM books WHERE id = $1", id)
	if err != nil {
		// The RESTRICT constraint backs up the check above
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cannot delete book %d: referenced by order lines", id)
		}
		return fmt.Errorf("failed to delete book: %w", err)
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

// GetCategories retrieves all categories ordered by name
func (r *BookRepository) GetCategories() ([]*models.Category, error) {
	rows, err := r.db.Query("SELECT id, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// CreateCategory creates a new category. The slug is derived from the name
// when not provided.
func (r *BookRepository) CreateCategory(name, slug string) (*models.Category, error) {
	if slug == "" {
		slug = slugify(name)
	}
	category := &models.Category{}
	err := r.db.QueryRow(`
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug`, name, slug).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// CreateAuthor creates a new author
func (r *BookRepository) CreateAuthor(firstName, lastName string) (*models.Author, error) {
	author := &models.Author{}
	err := r.db.QueryRow(`
		INSERT INTO authors (first_name, last_name)
		VALUES ($1, $2)
		RETURNING id, first_name, last_name`, firstName, lastName).Scan(&author.ID, &author.FirstName, &author.LastName)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return author, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
