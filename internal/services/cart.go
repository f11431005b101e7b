package services

import (
	"online-bookstore/internal/models"

	"github.com/shopspring/decimal"
)

// CartStore provides cart persistence
type CartStore interface {
	AddItem(userID int, req *models.CartAddRequest) error
	SetItemQuantity(userID, bookID, quantity int) error
	RemoveItem(userID, bookID int) error
	GetItems(userID int) ([]*models.CartItemWithBook, error)
	Clear(userID int) error
}

// BookReader provides the catalog reads the cart needs
type BookReader interface {
	GetByID(id int) (*models.Book, error)
}

// CartView is the cart as returned to the buyer
type CartView struct {
	Items       []*models.CartItemWithBook `json:"items"`
	TotalAmount decimal.Decimal            `json:"total_amount"`
}

// CartService handles cart business logic. Availability shown here is
// informational only; the authoritative check happens under lock at
// checkout.
type CartService struct {
	cartStore CartStore
	books     BookReader
}

// NewCartService creates a new cart service
func NewCartService(cartStore CartStore, books BookReader) *CartService {
	return &CartService{cartStore: cartStore, books: books}
}

// AddItem adds a book to the user's cart after checking that the book is
// an active catalog entry
func (s *CartService) AddItem(userID int, req *models.CartAddRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	book, err := s.books.GetByID(req.BookID)
	if err != nil {
		return err
	}
	if !book.IsActive {
		return &models.BookUnavailableError{BookID: book.ID}
	}

	return s.cartStore.AddItem(userID, req)
}

// SetItemQuantity replaces a line's quantity
func (s *CartService) SetItemQuantity(userID, bookID, quantity int) error {
	return s.cartStore.SetItemQuantity(userID, bookID, quantity)
}

// RemoveItem removes a book from the cart
func (s *CartService) RemoveItem(userID, bookID int) error {
	return s.cartStore.RemoveItem(userID, bookID)
}

// GetCart retrieves the user's cart with an exact decimal total
func (s *CartService) GetCart(userID int) (*CartView, error) {
	items, err := s.cartStore.GetItems(userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: items, TotalAmount: decimal.Zero}
	for _, item := range items {
		view.TotalAmount = view.TotalAmount.Add(item.Subtotal())
	}

	return view, nil
}

// Clear empties the user's cart
func (s *CartService) Clear(userID int) error {
	return s.cartStore.Clear(userID)
}
