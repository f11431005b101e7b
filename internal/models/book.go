package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a book category
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Author represents a book author
type Author struct {
	ID        int    `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

// Book represents a book in the catalog.
//
// Price is the current catalog price; checkout snapshots it into the order
// line, so changing it later never affects committed orders.
type Book struct {
	ID              int             `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	ISBN            string          `json:"isbn" db:"isbn"`
	Description     string          `json:"description" db:"description"`
	CategoryID      int             `json:"category_id" db:"category_id"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Pages           *int            `json:"pages,omitempty" db:"pages"`
	PublicationDate *time.Time      `json:"publication_date,omitempty" db:"publication_date"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// BookWithDetails represents a book with category and author names attached
type BookWithDetails struct {
	*Book
	CategoryName  string   `json:"category_name" db:"category_name"`
	Authors       []string `json:"authors"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	Available     int      `json:"available"`
}

// BookCreateRequest represents the data needed to create a new book
type BookCreateRequest struct {
	Title           string          `json:"title"`
	ISBN            string          `json:"isbn"`
	Description     string          `json:"description"`
	CategoryID      int             `json:"category_id"`
	Price           decimal.Decimal `json:"price"`
	Pages           *int            `json:"pages,omitempty"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
	AuthorIDs       []int           `json:"author_ids,omitempty"`
}

// BookUpdateRequest represents the data that can be updated for a book
type BookUpdateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CategoryID  int             `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

var isbnRegex = regexp.MustCompile(`^[0-9][0-9-]{8,18}[0-9X]$`)

// Validate validates book creation data
func (req *BookCreateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if len(req.Title) > 255 {
		return errors.New("title must be less than 255 characters")
	}
	if !isbnRegex.MatchString(req.ISBN) {
		return errors.New("isbn format is invalid")
	}
	if req.CategoryID <= 0 {
		return errors.New("category is required")
	}
	return validateBookPrice(req.Price)
}

// Validate validates book update data
func (req *BookUpdateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if req.CategoryID <= 0 {
		return errors.New("category is required")
	}
	return validateBookPrice(req.Price)
}

// validateBookPrice validates a catalog price: non-negative, at most two
// decimal places (exact currency unit, never floating point)
func validateBookPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if price.Exponent() < -2 {
		return errors.New("price cannot have more than two decimal places")
	}
	if price.GreaterThan(decimal.NewFromInt(100000)) {
		return errors.New("price cannot exceed 100000.00")
	}
	return nil
}
