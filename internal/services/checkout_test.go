package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"online-bookstore/internal/events"
	"online-bookstore/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCheckoutStore mimics the database-backed checkout: it holds stock per
// book behind a single mutex and converts a fixed cart into an order
// atomically, debiting nothing unless every line fits.
type fakeCheckoutStore struct {
	mu     sync.Mutex
	stock  map[int]int
	prices map[int]decimal.Decimal
	cart   []*models.CartItem
	nextID int

	calls    int
	failWith error // returned before any work when set
	failSeq  []error
}

func newFakeCheckoutStore() *fakeCheckoutStore {
	return &fakeCheckoutStore{
		stock:  make(map[int]int),
		prices: make(map[int]decimal.Decimal),
		nextID: 1,
	}
}

func (f *fakeCheckoutStore) setBook(bookID, stock int, price string) {
	f.stock[bookID] = stock
	f.prices[bookID] = decimal.RequireFromString(price)
}

func (f *fakeCheckoutStore) CreateOrderFromCart(userID int, req *models.CheckoutRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if len(f.failSeq) > 0 {
		err := f.failSeq[0]
		f.failSeq = f.failSeq[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.failWith != nil {
		return nil, f.failWith
	}

	if len(f.cart) == 0 {
		return nil, models.ErrEmptyCart
	}

	// Validate every line before debiting anything
	for _, item := range f.cart {
		available := f.stock[item.BookID]
		if item.Quantity > available {
			return nil, &models.InsufficientStockError{
				BookID:    item.BookID,
				Requested: item.Quantity,
				Available: available,
			}
		}
	}

	order := &models.Order{
		ID:        f.nextID,
		UserID:    userID,
		Status:    models.OrderProcessing,
		CreatedAt: time.Now(),
	}
	f.nextID++

	total := decimal.Zero
	for _, item := range f.cart {
		f.stock[item.BookID] -= item.Quantity
		price := f.prices[item.BookID]
		order.Items = append(order.Items, &models.OrderItem{
			OrderID:  order.ID,
			BookID:   item.BookID,
			Price:    price,
			Quantity: item.Quantity,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalAmount = total
	f.cart = nil

	return order, nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu      sync.Mutex
	created []events.OrderCreated
}

func (p *fakePublisher) PublishOrderCreated(event events.OrderCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
}

func (p *fakePublisher) PublishOrderStatusChanged(event events.OrderStatusChanged) {}

func validCheckout() *models.CheckoutRequest {
	return &models.CheckoutRequest{ShippingAddress: "1 Main St, Springfield"}
}

func TestCheckoutSuccess(t *testing.T) {
	store := newFakeCheckoutStore()
	store.setBook(1, 10, "10.00")
	store.setBook(2, 5, "2.50")
	store.cart = []*models.CartItem{
		{BookID: 1, Quantity: 2},
		{BookID: 2, Quantity: 2},
	}
	publisher := &fakePublisher{}
	service := NewCheckoutService(store, publisher, 3, time.Millisecond)

	order, err := service.Checkout(7, validCheckout())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, 7, order.UserID)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")),
		"total = %s, want 25.00", order.TotalAmount)
	assert.Len(t, order.Items, 2)

	// Stock was debited and the cart cleared
	assert.Equal(t, 8, store.stock[1])
	assert.Equal(t, 3, store.stock[2])
	assert.Empty(t, store.cart)

	// One event, with the order's lines and unit count
	require.Len(t, publisher.created, 1)
	event := publisher.created[0]
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, 4, event.BooksSold)
	assert.Len(t, event.Lines, 2)
	assert.True(t, event.TotalAmount.Equal(order.TotalAmount))
}

func TestCheckoutEmptyCart(t *testing.T) {
	store := newFakeCheckoutStore()
	publisher := &fakePublisher{}
	service := NewCheckoutService(store, publisher, 3, time.Millisecond)

	order, err := service.Checkout(7, validCheckout())
	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Equal(t, 1, store.calls, "user errors must not be retried")
	assert.Empty(t, publisher.created, "no event on failure")
}

func TestCheckoutInsufficientStock(t *testing.T) {
	store := newFakeCheckoutStore()
	store.setBook(1, 4, "10.00")
	store.cart = []*models.CartItem{{BookID: 1, Quantity: 10}}
	publisher := &fakePublisher{}
	service := NewCheckoutService(store, publisher, 3, time.Millisecond)

	order, err := service.Checkout(7, validCheckout())
	assert.Nil(t, order)

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.BookID)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)

	// Nothing changed
	assert.Equal(t, 4, store.stock[1])
	assert.Len(t, store.cart, 1, "cart survives a failed checkout")
	assert.Equal(t, 1, store.calls)
	assert.Empty(t, publisher.created)
}

func TestCheckoutRetriesLockTimeout(t *testing.T) {
	store := newFakeCheckoutStore()
	store.setBook(1, 5, "3.00")
	store.cart = []*models.CartItem{{BookID: 1, Quantity: 1}}
	store.failSeq = []error{models.ErrLockTimeout, models.ErrLockTimeout, nil}
	publisher := &fakePublisher{}
	service := NewCheckoutService(store, publisher, 3, time.Millisecond)

	order, err := service.Checkout(7, validCheckout())
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 3, store.calls, "two timeouts then success")
	assert.Len(t, publisher.created, 1)
}

func TestCheckoutRetriesExhausted(t *testing.T) {
	store := newFakeCheckoutStore()
	store.failWith = models.ErrLockTimeout
	publisher := &fakePublisher{}
	service := NewCheckoutService(store, publisher, 2, time.Millisecond)

	order, err := service.Checkout(7, validCheckout())
	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrLockTimeout)
	assert.Equal(t, 3, store.calls, "initial attempt plus two retries")
	assert.Empty(t, publisher.created)
}

func TestCheckoutDoesNotRetryOtherErrors(t *testing.T) {
	store := newFakeCheckoutStore()
	store.failWith = errors.New("connection refused")
	service := NewCheckoutService(store, &fakePublisher{}, 5, time.Millisecond)

	_, err := service.Checkout(7, validCheckout())
	assert.Error(t, err)
	assert.Equal(t, 1, store.calls)
}

// Two buyers race for 5 units wanting 3 each: exactly one order commits and
// the loser sees the leftover 2 units in the error.
func TestCheckoutConcurrentContention(t *testing.T) {
	store := newFakeCheckoutStore()
	store.setBook(1, 5, "10.00")
	service := NewCheckoutService(store, &fakePublisher{}, 0, 0)

	type result struct {
		order *models.Order
		err   error
	}
	results := make(chan result, 2)
	var start sync.WaitGroup
	start.Add(1)

	for user := 1; user <= 2; user++ {
		go func(userID int) {
			start.Wait()
			// Each attempt works on its own cart line
			store.mu.Lock()
			store.cart = []*models.CartItem{{BookID: 1, Quantity: 3}}
			store.mu.Unlock()
			order, err := service.Checkout(userID, validCheckout())
			results <- result{order, err}
		}(user)
	}
	start.Done()

	var succeeded, failed int
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil {
			succeeded++
		} else {
			failed++
			var stockErr *models.InsufficientStockError
			if errors.As(r.err, &stockErr) {
				assert.Equal(t, 3, stockErr.Requested)
				assert.Equal(t, 2, stockErr.Available)
			} else {
				assert.ErrorIs(t, r.err, models.ErrEmptyCart)
			}
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one checkout wins")
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, store.stock[1], "only the winner debits stock")
}

func TestCheckoutNotIdempotent(t *testing.T) {
	store := newFakeCheckoutStore()
	store.setBook(1, 10, "5.00")
	service := NewCheckoutService(store, &fakePublisher{}, 0, 0)

	store.cart = []*models.CartItem{{BookID: 1, Quantity: 2}}
	first, err := service.Checkout(7, validCheckout())
	require.NoError(t, err)

	// Repopulating the cart and checking out again creates a second order
	store.cart = []*models.CartItem{{BookID: 1, Quantity: 2}}
	second, err := service.Checkout(7, validCheckout())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 6, store.stock[1])
}
