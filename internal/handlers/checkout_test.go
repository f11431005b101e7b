package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCheckoutStore returns a canned order or error
type stubCheckoutStore struct {
	order *models.Order
	err   error
}

func (s *stubCheckoutStore) CreateOrderFromCart(userID int, req *models.CheckoutRequest) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func checkoutRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	user := &models.User{ID: 7, Role: models.RoleBuyer}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return req.WithContext(ctx)
}

func newCheckoutHandler(store *stubCheckoutStore) *CheckoutHandler {
	service := services.NewCheckoutService(store, nil, 0, 0)
	return NewCheckoutHandler(service)
}

func TestCheckoutHandlerSuccess(t *testing.T) {
	store := &stubCheckoutStore{order: &models.Order{
		ID:          42,
		UserID:      7,
		Status:      models.OrderProcessing,
		TotalAmount: decimal.RequireFromString("25.00"),
		Items: []*models.OrderItem{
			{BookID: 1, Price: decimal.RequireFromString("12.50"), Quantity: 2},
		},
	}}
	handler := newCheckoutHandler(store)

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{"shipping_address":"1 Main St"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, 42, order.ID)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")))
}

func TestCheckoutHandlerEmptyCart(t *testing.T) {
	handler := newCheckoutHandler(&stubCheckoutStore{err: models.ErrEmptyCart})

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{"shipping_address":"1 Main St"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_cart", resp.Error)
}

func TestCheckoutHandlerInsufficientStock(t *testing.T) {
	handler := newCheckoutHandler(&stubCheckoutStore{err: &models.InsufficientStockError{
		BookID:    3,
		Requested: 10,
		Available: 4,
	}})

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{"shipping_address":"1 Main St"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_stock", resp.Error)
	assert.Equal(t, 3, resp.BookID)
	assert.Equal(t, 10, resp.Requested)
	require.NotNil(t, resp.Available)
	assert.Equal(t, 4, *resp.Available)
}

func TestCheckoutHandlerBookUnavailable(t *testing.T) {
	handler := newCheckoutHandler(&stubCheckoutStore{err: &models.BookUnavailableError{BookID: 5}})

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{"shipping_address":"1 Main St"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "book_unavailable", resp.Error)
	assert.Equal(t, 5, resp.BookID)
}

func TestCheckoutHandlerLockTimeout(t *testing.T) {
	handler := newCheckoutHandler(&stubCheckoutStore{err: models.ErrLockTimeout})

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{"shipping_address":"1 Main St"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "lock_timeout", resp.Error)
}

func TestCheckoutHandlerMalformedBody(t *testing.T) {
	handler := newCheckoutHandler(&stubCheckoutStore{})

	rec := httptest.NewRecorder()
	handler.Checkout(rec, checkoutRequest(t, `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
