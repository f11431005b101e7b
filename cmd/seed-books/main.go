package main

import (
	"fmt"
	"log"

	"online-bookstore/internal/config"
	"online-bookstore/internal/database"
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"

	"github.com/shopspring/decimal"
)

type seedBook struct {
	title    string
	isbn     string
	category string
	author   [2]string // first, last
	price    string
	stock    int
}

var seedData = []seedBook{
	{"The Go Programming Language", "978-0134190440", "Programming", [2]string{"Alan", "Donovan"}, "39.99", 25},
	{"Designing Data-Intensive Applications", "978-1449373320", "Programming", [2]string{"Martin", "Kleppmann"}, "54.99", 12},
	{"Database Internals", "978-1492040347", "Programming", [2]string{"Alex", "Petrov"}, "49.99", 8},
	{"The Pragmatic Programmer", "978-0135957059", "Programming", [2]string{"David", "Thomas"}, "44.95", 30},
	{"Dune", "978-0441013593", "Science Fiction", [2]string{"Frank", "Herbert"}, "10.99", 50},
	{"Project Hail Mary", "978-0593135204", "Science Fiction", [2]string{"Andy", "Weir"}, "15.49", 40},
	{"The Name of the Wind", "978-0756404741", "Fantasy", [2]string{"Patrick", "Rothfuss"}, "9.99", 35},
	{"A Wizard of Earthsea", "978-0547773742", "Fantasy", [2]string{"Ursula", "Le Guin"}, "12.99", 20},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bookRepo := repositories.NewBookRepository(db.DB)
	inventoryRepo := repositories.NewInventoryRepository(db.DB)

	categories := make(map[string]int)
	authors := make(map[string]int)
	created := 0

	for _, seed := range seedData {
		categoryID, ok := categories[seed.category]
		if !ok {
			category, err := bookRepo.CreateCategory(seed.category, "")
			if err != nil {
				log.Fatalf("Failed to create category %q: %v", seed.category, err)
			}
			categoryID = category.ID
			categories[seed.category] = categoryID
		}

		authorKey := seed.author[0] + " " + seed.author[1]
		authorID, ok := authors[authorKey]
		if !ok {
			author, err := bookRepo.CreateAuthor(seed.author[0], seed.author[1])
			if err != nil {
				log.Fatalf("Failed to create author %q: %v", authorKey, err)
			}
			authorID = author.ID
			authors[authorKey] = authorID
		}

		price, err := decimal.NewFromString(seed.price)
		if err != nil {
			log.Fatalf("Bad seed price %q: %v", seed.price, err)
		}

		book, err := bookRepo.Create(&models.BookCreateRequest{
			Title:      seed.title,
			ISBN:       seed.isbn,
			CategoryID: categoryID,
			Price:      price,
			AuthorIDs:  []int{authorID},
		})
		if err != nil {
			log.Printf("Skipping %q: %v", seed.title, err)
			continue
		}

		stock := seed.stock
		if _, err := inventoryRepo.UpdateStock(book.ID, &models.StockUpdateRequest{Stock: &stock}); err != nil {
			log.Fatalf("Failed to set stock for %q: %v", seed.title, err)
		}
		created++
	}

	fmt.Printf("Seeded %d books across %d categories\n", created, len(categories))
}
