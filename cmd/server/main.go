package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"online-bookstore/internal/config"
	"online-bookstore/internal/database"
	"online-bookstore/internal/events"
	"online-bookstore/internal/handlers"
	"online-bookstore/internal/middleware"
	"online-bookstore/internal/repositories"
	"online-bookstore/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
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
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize repositories
	bookRepo := repositories.NewBookRepository(db.DB)
	inventoryRepo := repositories.NewInventoryRepository(db.DB)
	cartRepo := repositories.NewCartRepository(db.DB)
	checkoutRepo := repositories.NewCheckoutRepository(db.DB, cfg.Database.LockTimeoutMS)
	orderRepo := repositories.NewOrderRepository(db.DB)
	reviewRepo := repositories.NewReviewRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	// Event wiring: the in-process bus always runs; an AMQP broker joins
	// the fanout when configured
	bus := events.NewBus()
	var publisher events.Publisher = bus
	if cfg.AMQP.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Printf("AMQP unavailable, continuing with in-process events only: %v", err)
		} else {
			defer rabbit.Close()
			publisher = events.Fanout{bus, rabbit}
			log.Println("AMQP publisher connected")
		}
	}

	// Initialize services
	authService := services.NewAuthService(userRepo)
	catalogService := services.NewCatalogService(bookRepo, inventoryRepo)
	cartService := services.NewCartService(cartRepo, bookRepo)
	checkoutService := services.NewCheckoutService(checkoutRepo, publisher,
		cfg.Checkout.MaxRetries, time.Duration(cfg.Checkout.RetryDelayMS)*time.Millisecond)
	orderService := services.NewOrderService(orderRepo, publisher)
	reviewService := services.NewReviewService(reviewRepo)
	reportService := services.NewReportService(orderRepo)
	auditService := services.NewAuditService(auditRepo)

	// Sales statistics follow order events
	reportService.Subscribe(bus)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authService, sessionStore)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	authHandler := handlers.NewAuthHandler(authService, sessionStore)
	bookHandler := handlers.NewBookHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService, auditService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	adminHandler := handlers.NewAdminHandler(catalogService, reportService, authService, auditService)

	// Initialize router
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.SecureHeaders)
	r.Use(authMiddleware.LoadUser)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Auth routes
	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginLimiter)).Post("/register", authHandler.Register)
		r.With(middleware.RateLimit(loginLimiter)).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
	})

	// Public catalog routes
	r.Get("/books", bookHandler.ListBooks)
	r.Get("/books/{id}", bookHandler.GetBook)
	r.Get("/books/{id}/reviews", reviewHandler.ListBookReviews)
	r.With(authMiddleware.RequireAuth).Post("/books/{id}/reviews", reviewHandler.CreateReview)
	r.Get("/categories", bookHandler.ListCategories)

	// Cart and checkout
	r.Route("/cart", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{bookId}", cartHandler.UpdateItem)
		r.Delete("/items/{bookId}", cartHandler.RemoveItem)
	})
	r.With(authMiddleware.RequireAuth).Post("/checkout", checkoutHandler.Checkout)

	// Order history
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", orderHandler.ListMyOrders)
		r.Get("/{id}", orderHandler.GetOrder)
	})

	// Manager and admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireManager)

		r.Post("/books", adminHandler.CreateBook)
		r.Put("/books/{id}", adminHandler.UpdateBook)
		r.Delete("/books/{id}", adminHandler.DeleteBook)
		r.Get("/books/{id}/inventory", adminHandler.GetInventory)
		r.Put("/books/{id}/inventory", adminHandler.AdjustStock)
		r.Post("/categories", adminHandler.CreateCategory)
		r.Post("/authors", adminHandler.CreateAuthor)

		r.Get("/orders", orderHandler.SearchOrders)
		r.Put("/orders/{id}/status", orderHandler.UpdateStatus)

		r.Put("/reviews/{id}/moderate", reviewHandler.ModerateReview)
		r.Delete("/reviews/{id}", reviewHandler.DeleteReview)

		r.Get("/reports/sales", adminHandler.SalesSummary)
		r.Get("/reports/sales.csv", adminHandler.ExportSalesCSV)
		r.Get("/reports/top-books", adminHandler.TopBooks)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)
			r.Put("/users/{id}/role", adminHandler.SetUserRole)
			r.Put("/users/{id}/blocked", adminHandler.SetUserBlocked)
			r.Get("/audit", adminHandler.AuditLog)
		})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-done
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
