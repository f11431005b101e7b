package events

import (
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys for order events
const (
	RKOrderCreated       = "order.created"
	RKOrderStatusChanged = "order.status_changed"
)

// OrderCreated is published once per committed checkout, after the
// transaction commits. Subscribers (sales statistics, notifications) react
// to it; the checkout path never calls them directly.
type OrderCreated struct {
	OrderID     int             `json:"order_id"`
	UserID      int             `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	BooksSold   int             `json:"books_sold"`
	Lines       []OrderLine     `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderLine is one line of an OrderCreated event
type OrderLine struct {
	BookID    int             `json:"book_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderStatusChanged is published on every successful status transition
type OrderStatusChanged struct {
	OrderID   int       `json:"order_id"`
	UserID    int       `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher publishes order events to interested subscribers
type Publisher interface {
	PublishOrderCreated(event OrderCreated)
	PublishOrderStatusChanged(event OrderStatusChanged)
}

// OrderCreatedHandler handles OrderCreated events
type OrderCreatedHandler func(event OrderCreated)

// OrderStatusChangedHandler handles OrderStatusChanged events
type OrderStatusChangedHandler func(event OrderStatusChanged)

// Bus is an in-process publisher. Handlers run synchronously in
// subscription order; a slow handler slows publishing, not checkout
// correctness (events fire only after the transaction has committed).
type Bus struct {
	mu              sync.RWMutex
	createdHandlers []OrderCreatedHandler
	statusHandlers  []OrderStatusChangedHandler
}

// NewBus creates a new in-process event bus
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeOrderCreated registers a handler for OrderCreated events
func (b *Bus) SubscribeOrderCreated(handler OrderCreatedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdHandlers = append(b.createdHandlers, handler)
}

// SubscribeOrderStatusChanged registers a handler for OrderStatusChanged events
func (b *Bus) SubscribeOrderStatusChanged(handler OrderStatusChangedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusHandlers = append(b.statusHandlers, handler)
}

// PublishOrderCreated delivers the event to all subscribers
func (b *Bus) PublishOrderCreated(event OrderCreated) {
	b.mu.RLock()
	handlers := make([]OrderCreatedHandler, len(b.createdHandlers))
	copy(handlers, b.createdHandlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// PublishOrderStatusChanged delivers the event to all subscribers
func (b *Bus) PublishOrderStatusChanged(event OrderStatusChanged) {
	b.mu.RLock()
	handlers := make([]OrderStatusChangedHandler, len(b.statusHandlers))
	copy(handlers, b.statusHandlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Fanout publishes every event to multiple publishers (e.g. the in-process
// bus plus an AMQP broker)
type Fanout []Publisher

// PublishOrderCreated publishes to every wrapped publisher
func (f Fanout) PublishOrderCreated(event OrderCreated) {
	for _, p := range f {
		p.PublishOrderCreated(event)
	}
}

// PublishOrderStatusChanged publishes to every wrapped publisher
func (f Fanout) PublishOrderStatusChanged(event OrderStatusChanged) {
	for _, p := range f {
		p.PublishOrderStatusChanged(event)
	}
}

// logIfErr logs publish failures; event delivery is best-effort and never
// fails the business operation that triggered it
func logIfErr(routingKey string, err error) {
	if err != nil {
		log.Printf("failed to publish %s event: %v", routingKey, err)
	}
}
