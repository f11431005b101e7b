package handlers

import (
	"net/http"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
)

// CartHandler handles cart requests. All routes require authentication.
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	cart, err := h.cartService.GetCart(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	if cart.Items == nil {
		cart.Items = []*models.CartItemWithBook{}
	}
	respondJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.CartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.cartService.AddItem(user.ID, &req); err != nil {
		respondError(w, err)
		return
	}

	cart, err := h.cartService.GetCart(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /cart/items/{bookId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	bookID, err := urlParamInt(chi.URLParam(r, "bookId"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.cartService.SetItemQuantity(user.ID, bookID, req.Quantity); err != nil {
		respondError(w, err)
		return
	}

	cart, err := h.cartService.GetCart(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/{bookId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	bookID, err := urlParamInt(chi.URLParam(r, "bookId"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.cartService.RemoveItem(user.ID, bookID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := h.cartService.Clear(user.ID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
