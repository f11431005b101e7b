package handlers

import (
	"net/http"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// BookHandler handles catalog browsing requests
type BookHandler struct {
	catalogService *services.CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalogService *services.CatalogService) *BookHandler {
	return &BookHandler{catalogService: catalogService}
}

// bookListResponse is the paginated book search result
type bookListResponse struct {
	Books  []*models.Book `json:"books"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListBooks handles GET /books
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	filters := repositories.BookSearchFilters{
		Query:      r.URL.Query().Get("q"),
		CategoryID: queryInt(r, "category_id", 0),
		Limit:      limit,
		Offset:     offset,
		SortBy:     r.URL.Query().Get("sort"),
		SortDesc:   r.URL.Query().Get("order") == "desc",
	}

	if raw := r.URL.Query().Get("price_min"); raw != "" {
		if min, err := decimal.NewFromString(raw); err == nil {
			filters.PriceMin = &min
		}
	}
	if raw := r.URL.Query().Get("price_max"); raw != "" {
		if max, err := decimal.NewFromString(raw); err == nil {
			filters.PriceMax = &max
		}
	}

	// Inactive books are visible to catalog managers only
	user := middleware.GetUserFromContext(r.Context())
	filters.ActiveOnly = user == nil || !user.IsManager()

	books, total, err := h.catalogService.SearchBooks(filters)
	if err != nil {
		respondError(w, err)
		return
	}

	if books == nil {
		books = []*models.Book{}
	}
	respondJSON(w, http.StatusOK, bookListResponse{Books: books, Total: total, Limit: limit, Offset: offset})
}

// GetBook handles GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	book, err := h.catalogService.GetBook(id)
	if err != nil {
		respondError(w, err)
		return
	}

	// Deactivated books 404 for everyone except catalog managers
	user := middleware.GetUserFromContext(r.Context())
	if !book.IsActive && (user == nil || !user.IsManager()) {
		respondError(w, models.ErrBookNotFound)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

// ListCategories handles GET /categories
func (h *BookHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.GetCategories()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
