package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/wanderweb/tripkit/docs"
	"github.com/wanderweb/tripkit/internal/balance"
	"github.com/wanderweb/tripkit/internal/config"
	"github.com/wanderweb/tripkit/internal/database"
	"github.com/wanderweb/tripkit/internal/expense"
	"github.com/wanderweb/tripkit/internal/expense/split"
	"github.com/wanderweb/tripkit/internal/group"
	"github.com/wanderweb/tripkit/internal/notification"
	"github.com/wanderweb/tripkit/internal/user"
	mw "github.com/wanderweb/tripkit/pkg/middleware"
)

// @title        TripKit API
// @version      1.0
// @description  Shared trip expenses, splits and balances.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Notification feature (wired into group and expense services below)
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	// Expense feature
	policy := split.Policy{RequirePayerInSplit: cfg.RequirePayerInSplit}
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, notificationService, policy, cfg.DefaultCurrency)
	expenseHandler := expense.NewHandler(expenseService)

	// Balance feature (pure queries over the expense snapshot)
	balanceService := balance.NewService(expenseRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.TestUserMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
