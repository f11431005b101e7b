package handlers

import (
	"net/http"
	"time"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order history and manager status updates
type OrderHandler struct {
	orderService *services.OrderService
	auditService *services.AuditService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService, auditService *services.AuditService) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService}
}

// orderListResponse is the paginated order list
type orderListResponse struct {
	Orders []*models.Order `json:"orders"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ListMyOrders handles GET /orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	limit, offset := pagination(r)

	orders, total, err := h.orderService.GetUserOrders(user.ID, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	respondJSON(w, http.StatusOK, orderListResponse{Orders: orders, Total: total, Limit: limit, Offset: offset})
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.GetOrder(id, user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// SearchOrders handles GET /admin/orders; manager-only
func (h *OrderHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	filters := repositories.OrderSearchFilters{
		UserID:   queryInt(r, "user_id", 0),
		Status:   models.OrderStatus(r.URL.Query().Get("status")),
		Limit:    limit,
		Offset:   offset,
		SortBy:   r.URL.Query().Get("sort"),
		SortDesc: r.URL.Query().Get("order") != "asc",
	}

	if raw := r.URL.Query().Get("date_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filters.DateFrom = &t
		}
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filters.DateTo = &t
		}
	}

	orders, total, err := h.orderService.SearchOrders(filters)
	if err != nil {
		respondError(w, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	respondJSON(w, http.StatusOK, orderListResponse{Orders: orders, Total: total, Limit: limit, Offset: offset})
}

// UpdateStatus handles PUT /admin/orders/{id}/status; manager-only
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req struct {
		Status         models.OrderStatus `json:"status"`
		TrackingNumber string             `json:"tracking_number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}
	if !models.ValidStatus(req.Status) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "unknown order status"})
		return
	}

	order, err := h.orderService.UpdateStatus(id, req.Status, req.TrackingNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "order.status_update", "order", order.ID, string(order.Status), r.RemoteAddr)
	respondJSON(w, http.StatusOK, order)
}
