package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
)

// AdminHandler handles catalog administration, stock adjustments, user
// management, and sales reporting
type AdminHandler struct {
	catalogService *services.CatalogService
	reportService  *services.ReportService
	authService    *services.AuthService
	auditService   *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogService *services.CatalogService, reportService *services.ReportService, authService *services.AuthService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		reportService:  reportService,
		authService:    authService,
		auditService:   auditService,
	}
}

// CreateBook handles POST /admin/books
func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.BookCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	book, err := h.catalogService.CreateBook(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "book.create", "book", book.ID, book.Title, r.RemoteAddr)
	respondJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /admin/books/{id}
func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req models.BookUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	book, err := h.catalogService.UpdateBook(id, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "book.update", "book", book.ID, book.Title, r.RemoteAddr)
	respondJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /admin/books/{id}. Books referenced by order
// lines cannot be deleted; deactivate them instead.
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.catalogService.DeleteBook(id); err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "book.delete", "book", id, "", r.RemoteAddr)
	respondJSON(w, http.StatusNoContent, nil)
}

// CreateCategory handles POST /admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}
	if req.Name == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "name is required"})
		return
	}

	category, err := h.catalogService.CreateCategory(req.Name, req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// CreateAuthor handles POST /admin/authors
func (h *AdminHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}
	if req.LastName == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "last name is required"})
		return
	}

	author, err := h.catalogService.CreateAuthor(req.FirstName, req.LastName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, author)
}

// GetInventory handles GET /admin/books/{id}/inventory
func (h *AdminHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	inventory, err := h.catalogService.GetInventory(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inventory)
}

// AdjustStock handles PUT /admin/books/{id}/inventory
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req models.StockUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	inventory, err := h.catalogService.AdjustStock(id, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "inventory.adjust", "book", id, fmt.Sprintf("stock=%d", inventory.Stock), r.RemoteAddr)
	respondJSON(w, http.StatusOK, inventory)
}

// SetUserRole handles PUT /admin/users/{id}/role; admin-only
func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.authService.SetRole(id, req.Role); err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "user.set_role", "user", id, string(req.Role), r.RemoteAddr)
	respondJSON(w, http.StatusNoContent, nil)
}

// SetUserBlocked handles PUT /admin/users/{id}/blocked; admin-only
func (h *AdminHandler) SetUserBlocked(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	id, err := urlParamInt(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.authService.SetBlocked(id, req.Blocked); err != nil {
		respondError(w, err)
		return
	}

	h.auditService.Record(user.ID, "user.set_blocked", "user", id, fmt.Sprintf("blocked=%t", req.Blocked), r.RemoteAddr)
	respondJSON(w, http.StatusNoContent, nil)
}

// SalesSummary handles GET /admin/reports/sales
func (h *AdminHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	dateFrom, dateTo := dateRange(r)

	summary, err := h.reportService.GetSalesSummary(dateFrom, dateTo)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ExportSalesCSV handles GET /admin/reports/sales.csv
func (h *AdminHandler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	dateFrom, dateTo := dateRange(r)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)

	if err := h.reportService.WriteSalesCSV(w, dateFrom, dateTo); err != nil {
		// Headers are already written at this point
		log.Printf("failed to export sales csv: %v", err)
	}
}

// TopBooks handles GET /admin/reports/top-books
func (h *AdminHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	books, err := h.reportService.GetTopBooks(limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, books)
}

// AuditLog handles GET /admin/audit; admin-only
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditService.GetRecent(queryInt(r, "limit", 100))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// dateRange parses optional date_from/date_to query parameters. date_to is
// exclusive of the following day: "2024-03-01" covers that whole day.
func dateRange(r *http.Request) (*time.Time, *time.Time) {
	var dateFrom, dateTo *time.Time
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			dateFrom = &t
		}
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24 * time.Hour)
			dateTo = &end
		}
	}
	return dateFrom, dateTo
}
