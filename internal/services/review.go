package services

import (
	"fmt"

	"online-bookstore/internal/models"
)

// ReviewStore provides review persistence
type ReviewStore interface {
	Create(userID int, req *models.ReviewCreateRequest) (*models.Review, error)
	GetByBook(bookID, limit, offset int) ([]*models.Review, int, error)
	SetModerated(id int, moderated bool) error
	Delete(id int) error
}

// ReviewService handles book reviews. A user gets one review per book;
// the unique constraint surfaces as ErrDuplicateEntry.
type ReviewService struct {
	reviews ReviewStore
}

// NewReviewService creates a new review service
func NewReviewService(reviews ReviewStore) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// CreateReview creates a review for a book
func (s *ReviewService) CreateReview(userID int, req *models.ReviewCreateRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return s.reviews.Create(userID, req)
}

// GetBookReviews retrieves a book's reviews, newest first
func (s *ReviewService) GetBookReviews(bookID, limit, offset int) ([]*models.Review, int, error) {
	return s.reviews.GetByBook(bookID, limit, offset)
}

// ModerateReview flags or unflags a review; manager-only at the handler
// boundary
func (s *ReviewService) ModerateReview(id int, moderated bool) error {
	return s.reviews.SetModerated(id, moderated)
}

// DeleteReview removes a review
func (s *ReviewService) DeleteReview(id int) error {
	return s.reviews.Delete(id)
}
