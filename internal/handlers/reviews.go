package handlers

import (
	"net/http"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
)

// ReviewHandler handles book review requests
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// reviewListResponse is the paginated review list
type reviewListResponse struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ListBookReviews handles GET /books/{id}/reviews
func (h *ReviewHandler) ListBookReviews(w http.ResponseWriter, r *http.Request) {
	bookID, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}
	limit, offset := pagination(r)

	reviews, total, err := h.reviewService.GetBookReviews(bookID, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	respondJSON(w, http.StatusOK, reviewListResponse{Reviews: reviews, Total: total, Limit: limit, Offset: offset})
}

// CreateReview handles POST /books/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	bookID, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req models.ReviewCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}
	req.BookID = bookID

	review, err := h.reviewService.CreateReview(user.ID, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// ModerateReview handles PUT /admin/reviews/{id}/moderate; manager-only
func (h *ReviewHandler) ModerateReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req struct {
		Moderated bool `json:"moderated"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.reviewService.ModerateReview(id, req.Moderated); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// DeleteReview handles DELETE /admin/reviews/{id}; manager-only
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.reviewService.DeleteReview(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
