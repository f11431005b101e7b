package services

import (
	"fmt"
	"time"

	"online-bookstore/internal/events"
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"
)

// OrderStore provides order reads and status transitions
type OrderStore interface {
	GetByID(id int) (*models.Order, error)
	GetByUser(userID, limit, offset int) ([]*models.Order, int, error)
	Search(filters repositories.OrderSearchFilters) ([]*models.Order, int, error)
	UpdateStatus(id int, status models.OrderStatus, trackingNumber string) (*models.Order, error)
}

// OrderService handles order reads and the manager-driven status
// transitions. It never creates orders; that is the checkout service's job.
type OrderService struct {
	orderStore OrderStore
	publisher  events.Publisher
}

// NewOrderService creates a new order service
func NewOrderService(orderStore OrderStore, publisher events.Publisher) *OrderService {
	return &OrderService{orderStore: orderStore, publisher: publisher}
}

// GetOrder retrieves an order. requesterID must own the order unless the
// requester may manage orders.
func (s *OrderService) GetOrder(id int, requester *models.User) (*models.Order, error) {
	order, err := s.orderStore.GetByID(id)
	if err != nil {
		return nil, err
	}

	if order.UserID != requester.ID && !requester.IsManager() {
		return nil, models.ErrUnauthorized
	}

	return order, nil
}

// GetUserOrders retrieves a user's order history, newest first
func (s *OrderService) GetUserOrders(userID, limit, offset int) ([]*models.Order, int, error) {
	return s.orderStore.GetByUser(userID, limit, offset)
}

// SearchOrders searches all orders; manager-only at the handler boundary
func (s *OrderService) SearchOrders(filters repositories.OrderSearchFilters) ([]*models.Order, int, error) {
	return s.orderStore.Search(filters)
}

// UpdateStatus moves an order through the status state machine and
// publishes the transition. Cancellation does not restock the debited
// units; the units stay debited.
func (s *OrderService) UpdateStatus(orderID int, status models.OrderStatus, trackingNumber string) (*models.Order, error) {
	before, err := s.orderStore.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderStore.UpdateStatus(orderID, status, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("status transition failed: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishOrderStatusChanged(events.OrderStatusChanged{
			OrderID:   order.ID,
			UserID:    order.UserID,
			From:      string(before.Status),
			To:        string(order.Status),
			ChangedAt: time.Now(),
		})
	}

	return order, nil
}
