package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-bookstore/internal/models"
)

// ReviewRepository handles review data operations
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = "id, user_id, book_id, rating, title, text, is_moderated, created_at, updated_at"

func scanReview(row interface{ Scan(...interface{}) error }) (*models.Review, error) {
	review := &models.Review{}
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.BookID,
		&review.Rating,
		&review.Title,
		&review.Text,
		&review.IsModerated,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Create creates a new review. One review per (user, book); a second
// submission is rejected as a duplicate.
func (r *ReviewRepository) Create(userID int, req *models.ReviewCreateRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	review, err := scanReview(r.db.QueryRow(`
		INSERT INTO reviews (user_id, book_id, rating, title, text, is_moderated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		RETURNING `+reviewColumns,
		userID, req.BookID, req.Rating, req.Title, req.Text, now, now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		if isForeignKeyViolation(err) {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// GetByBook retrieves reviews for a book, newest first
func (r *ReviewRepository) GetByBook(bookID, limit, offset int) ([]*models.Review, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM reviews WHERE book_id = $1", bookID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get review count: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, bookID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, total, nil
}

// SetModerated marks a review as moderated
func (r *ReviewRepository) SetModerated(id int, moderated bool) error {
	result, err := r.db.Exec(`
		UPDATE reviews SET is_moderated = $2, updated_at = $3 WHERE id = $1`,
		id, moderated, time.Now())
	if err != nil {
		return fmt.Errorf("failed to moderate review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrReviewNotFound
	}

	return nil
}

// Delete removes a review
func (r *ReviewRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrReviewNotFound
	}

	return nil
}
