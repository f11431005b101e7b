package handlers

import (
	"net/http"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"
)

// CheckoutHandler handles the cart-to-order conversion
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /checkout. On success the cart is empty and the
// response carries the created order with its price-snapshotted lines. On
// any failure nothing has changed: cart, stock, and orders are untouched.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.checkoutService.Checkout(user.ID, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
