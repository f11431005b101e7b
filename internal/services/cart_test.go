package services

import (
	"testing"

	"online-bookstore/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCartStore keeps cart lines per user in memory
type fakeCartStore struct {
	items map[int][]*models.CartItemWithBook
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{items: make(map[int][]*models.CartItemWithBook)}
}

func (f *fakeCartStore) AddItem(userID int, req *models.CartAddRequest) error {
	for _, item := range f.items[userID] {
		if item.BookID == req.BookID {
			item.Quantity += req.Quantity
			return nil
		}
	}
	f.items[userID] = append(f.items[userID], &models.CartItemWithBook{
		CartItem: models.CartItem{BookID: req.BookID, Quantity: req.Quantity},
	})
	return nil
}

func (f *fakeCartStore) SetItemQuantity(userID, bookID, quantity int) error {
	for _, item := range f.items[userID] {
		if item.BookID == bookID {
			item.Quantity = quantity
			return nil
		}
	}
	return models.ErrBookNotFound
}

func (f *fakeCartStore) RemoveItem(userID, bookID int) error {
	items := f.items[userID]
	for i, item := range items {
		if item.BookID == bookID {
			f.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCartStore) GetItems(userID int) ([]*models.CartItemWithBook, error) {
	return f.items[userID], nil
}

func (f *fakeCartStore) Clear(userID int) error {
	f.items[userID] = nil
	return nil
}

// fakeBookReader serves books from a map
type fakeBookReader struct {
	books map[int]*models.Book
}

func (f *fakeBookReader) GetByID(id int) (*models.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, models.ErrBookNotFound
	}
	return book, nil
}

func TestCartAddItemChecksAvailability(t *testing.T) {
	books := &fakeBookReader{books: map[int]*models.Book{
		1: {ID: 1, Title: "Dune", IsActive: true},
		2: {ID: 2, Title: "Retired Edition", IsActive: false},
	}}
	service := NewCartService(newFakeCartStore(), books)

	err := service.AddItem(7, &models.CartAddRequest{BookID: 1, Quantity: 2})
	assert.NoError(t, err)

	err = service.AddItem(7, &models.CartAddRequest{BookID: 2, Quantity: 1})
	var unavailable *models.BookUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 2, unavailable.BookID)

	err = service.AddItem(7, &models.CartAddRequest{BookID: 99, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrBookNotFound)

	err = service.AddItem(7, &models.CartAddRequest{BookID: 1, Quantity: 0})
	assert.Error(t, err, "zero quantity is rejected before the store is touched")
}

func TestCartGetCartTotals(t *testing.T) {
	store := newFakeCartStore()
	store.items[7] = []*models.CartItemWithBook{
		{CartItem: models.CartItem{BookID: 1, Quantity: 3}, Price: decimal.RequireFromString("10.10")},
		{CartItem: models.CartItem{BookID: 2, Quantity: 1}, Price: decimal.RequireFromString("0.01")},
	}
	service := NewCartService(store, &fakeBookReader{})

	cart, err := service.GetCart(7)
	require.NoError(t, err)

	// 3*10.10 + 0.01 = 30.31 exactly
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("30.31")),
		"total = %s, want 30.31", cart.TotalAmount)
	assert.Len(t, cart.Items, 2)
}

func TestCartGetCartEmpty(t *testing.T) {
	service := NewCartService(newFakeCartStore(), &fakeBookReader{})

	cart, err := service.GetCart(7)
	require.NoError(t, err)
	assert.True(t, cart.TotalAmount.IsZero())
	assert.Empty(t, cart.Items)
}
