package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"online-bookstore/internal/models"
)

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// errorResponse is the JSON body for failed requests. Kind is a stable
// machine-readable code; the stock fields are set only for
// insufficient_stock errors.
type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	BookID    int    `json:"book_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// respondError maps domain errors onto HTTP status codes and stable error
// kinds. Checkout failures are user-recoverable 4xx responses except lock
// timeouts, which are a retryable 503.
func respondError(w http.ResponseWriter, err error) {
	var stockErr *models.InsufficientStockError
	var unavailErr *models.BookUnavailableError

	switch {
	case errors.As(err, &stockErr):
		available := stockErr.Available
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:     "insufficient_stock",
			Message:   stockErr.Error(),
			BookID:    stockErr.BookID,
			Requested: stockErr.Requested,
			Available: &available,
		})
	case errors.As(err, &unavailErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "book_unavailable",
			Message: unavailErr.Error(),
			BookID:  unavailErr.BookID,
		})
	case errors.Is(err, models.ErrEmptyCart):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "empty_cart", Message: err.Error()})
	case errors.Is(err, models.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "lock_timeout", Message: err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_credentials", Message: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()})
	case errors.Is(err, models.ErrBookNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrReviewNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, models.ErrDuplicateEntry):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "duplicate", Message: err.Error()})
	case errors.Is(err, models.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
	}
}

// respondValidationError reports a request validation failure
func respondValidationError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
}

// decodeJSON decodes a request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// urlParamInt parses an integer URL parameter
func urlParamInt(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, name string, def int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// pagination extracts limit/offset query parameters with sane bounds
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
