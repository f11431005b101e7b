package services

import (
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"
)

// CatalogStore provides catalog persistence
type CatalogStore interface {
	Create(req *models.BookCreateRequest) (*models.Book, error)
	GetByID(id int) (*models.Book, error)
	GetWithDetails(id int) (*models.BookWithDetails, error)
	Search(filters repositories.BookSearchFilters) ([]*models.Book, int, error)
	Update(id int, req *models.BookUpdateRequest) (*models.Book, error)
	Delete(id int) error
	GetCategories() ([]*models.Category, error)
	CreateCategory(name, slug string) (*models.Category, error)
	CreateAuthor(firstName, lastName string) (*models.Author, error)
}

// InventoryStore provides stock reads and administrative writes
type InventoryStore interface {
	GetByBookID(bookID int) (*models.Inventory, error)
	GetAvailable(bookID int) (int, error)
	EnsureRecord(bookID int) error
	UpdateStock(bookID int, req *models.StockUpdateRequest) (*models.Inventory, error)
}

// CatalogService handles catalog browsing and administration
type CatalogService struct {
	books     CatalogStore
	inventory InventoryStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(books CatalogStore, inventory InventoryStore) *CatalogService {
	return &CatalogService{books: books, inventory: inventory}
}

// SearchBooks searches the catalog. Buyers only see active books; the
// handler sets ActiveOnly for non-admin requests.
func (s *CatalogService) SearchBooks(filters repositories.BookSearchFilters) ([]*models.Book, int, error) {
	return s.books.Search(filters)
}

// GetBook retrieves a book with details
func (s *CatalogService) GetBook(id int) (*models.BookWithDetails, error) {
	return s.books.GetWithDetails(id)
}

// GetCategories retrieves all categories
func (s *CatalogService) GetCategories() ([]*models.Category, error) {
	return s.books.GetCategories()
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(name, slug string) (*models.Category, error) {
	return s.books.CreateCategory(name, slug)
}

// CreateAuthor creates an author
func (s *CatalogService) CreateAuthor(firstName, lastName string) (*models.Author, error) {
	return s.books.CreateAuthor(firstName, lastName)
}

// CreateBook creates a book; its inventory record is created alongside it
// with zero stock
func (s *CatalogService) CreateBook(req *models.BookCreateRequest) (*models.Book, error) {
	return s.books.Create(req)
}

// UpdateBook updates a book's editable fields
func (s *CatalogService) UpdateBook(id int, req *models.BookUpdateRequest) (*models.Book, error) {
	return s.books.Update(id, req)
}

// DeleteBook deletes a book if no order lines reference it
func (s *CatalogService) DeleteBook(id int) error {
	return s.books.Delete(id)
}

// GetInventory retrieves a book's inventory record
func (s *CatalogService) GetInventory(bookID int) (*models.Inventory, error) {
	return s.inventory.GetByBookID(bookID)
}

// AdjustStock applies an administrative stock adjustment. The inventory
// row is created first if it is missing, then updated under the same row
// lock discipline as the checkout debit.
func (s *CatalogService) AdjustStock(bookID int, req *models.StockUpdateRequest) (*models.Inventory, error) {
	if _, err := s.books.GetByID(bookID); err != nil {
		return nil, err
	}
	if err := s.inventory.EnsureRecord(bookID); err != nil {
		return nil, err
	}
	return s.inventory.UpdateStock(bookID, req)
}
