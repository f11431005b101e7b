package services

import (
	"errors"
	"time"

	"online-bookstore/internal/events"
	"online-bookstore/internal/models"
)

// CheckoutStore performs the atomic cart-to-order conversion
type CheckoutStore interface {
	CreateOrderFromCart(userID int, req *models.CheckoutRequest) (*models.Order, error)
}

// CheckoutService drives the checkout operation: it delegates the atomic
// work to the store, retries transient lock timeouts a bounded number of
// times, and publishes the OrderCreated event once a checkout has
// committed.
//
// Checkout is deliberately not idempotent: a second call with a repopulated
// cart creates a second order.
type CheckoutService struct {
	store      CheckoutStore
	publisher  events.Publisher
	maxRetries int
	retryDelay time.Duration
}

// NewCheckoutService creates a new checkout service. maxRetries bounds
// automatic retries after a lock timeout; retryDelay is the backoff base.
func NewCheckoutService(store CheckoutStore, publisher events.Publisher, maxRetries int, retryDelay time.Duration) *CheckoutService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CheckoutService{
		store:      store,
		publisher:  publisher,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Checkout converts the user's cart into a committed order.
//
// User-recoverable failures (empty cart, insufficient stock, unavailable
// book) are returned as-is for the caller to surface; the user edits the
// cart and retries. Only lock timeouts are retried here, because a failed
// attempt commits nothing, so retrying cannot double-charge or double-debit.
func (s *CheckoutService) Checkout(userID int, req *models.CheckoutRequest) (*models.Order, error) {
	var order *models.Order
	var err error

	delay := s.retryDelay
	for attempt := 0; ; attempt++ {
		order, err = s.store.CreateOrderFromCart(userID, req)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrLockTimeout) || attempt >= s.maxRetries {
			return nil, err
		}
		time.Sleep(delay)
		delay *= 2
	}

	if s.publisher != nil {
		event := events.OrderCreated{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		}
		for _, item := range order.Items {
			event.BooksSold += item.Quantity
			event.Lines = append(event.Lines, events.OrderLine{
				BookID:    item.BookID,
				UnitPrice: item.Price,
				Quantity:  item.Quantity,
			})
		}
		s.publisher.PublishOrderCreated(event)
	}

	return order, nil
}
