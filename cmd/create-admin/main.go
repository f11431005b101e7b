package main

import (
	"flag"
	"fmt"
	"log"

	"online-bookstore/internal/config"
	"online-bookstore/internal/database"
	"online-bookstore/internal/models"
	"online-bookstore/internal/repositories"
	"online-bookstore/internal/utils"
)

func main() {
	var (
		email     = flag.String("email", "", "Admin email address")
		password  = flag.String("password", "", "Admin password (min 8 characters)")
		firstName = flag.String("first-name", "Admin", "First name")
		lastName  = flag.String("last-name", "", "Last name")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: go run cmd/create-admin/main.go -email admin@example.com -password secret123")
	}

	req := &models.RegisterRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
	}
	if err := req.Validate(); err != nil {
		log.Fatalf("Invalid admin details: %v", err)
	}

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

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	userRepo := repositories.NewUserRepository(db.DB)
	user, err := userRepo.Create(*email, hash, *firstName, *lastName, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created: %s (id %d)\n", user.Email, user.ID)
}
