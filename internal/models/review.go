package models

import (
	"errors"
	"time"
)

// Review represents a book review. One review per (user, book) pair.
type Review struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	BookID      int       `json:"book_id" db:"book_id"`
	Rating      int       `json:"rating" db:"rating"`
	Title       string    `json:"title" db:"title"`
	Text        string    `json:"text" db:"text"`
	IsModerated bool      `json:"is_moderated" db:"is_moderated"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewCreateRequest represents the data needed to create a review
type ReviewCreateRequest struct {
	BookID int    `json:"book_id"`
	Rating int    `json:"rating"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// Validate validates review creation data
func (req *ReviewCreateRequest) Validate() error {
	if req.BookID <= 0 {
		return errors.New("book id is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if len(req.Title) > 200 {
		return errors.New("title must be less than 200 characters")
	}
	if len(req.Text) > 5000 {
		return errors.New("text must be less than 5000 characters")
	}
	return nil
}
