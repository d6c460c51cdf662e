package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/jfcastellanos/prestamos-engine/internal/config"
	"github.com/jfcastellanos/prestamos-engine/internal/handler"
	"github.com/jfcastellanos/prestamos-engine/internal/repository"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cashRepo := repository.NewCashFlowRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	loanService := service.NewLoanService(clientRepo, paymentRepo, redisClient, cfg)
	summaryService := service.NewSummaryService(clientRepo, paymentRepo, cashRepo, userRepo)
	userService := service.NewUserService(userRepo, cashRepo, cfg)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService, summaryService)
	clientHandler := handler.NewClientHandler(loanService)
	paymentHandler := handler.NewPaymentHandler(loanService, summaryService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(cfg, authHandler, userHandler, clientHandler, paymentHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clientHandler *handler.ClientHandler,
	paymentHandler *handler.PaymentHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Public auth routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(handler.AuthMiddleware(cfg.Auth.JWTSecret))

	protected.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	protected.HandleFunc("/users/base", userHandler.RegisterCashBase).Methods("POST")
	protected.HandleFunc("/users/expense", userHandler.RegisterExpense).Methods("POST")
	protected.HandleFunc("/users/summary/weekly", userHandler.WeeklySummary).Methods("GET")
	protected.HandleFunc("/users/history", userHandler.History).Methods("GET")
	protected.HandleFunc("/users/collectors/summary", handler.RequireAdmin(userHandler.CollectorsSummary)).Methods("GET")
	protected.HandleFunc("/users", handler.RequireAdmin(userHandler.List)).Methods("GET")
	protected.HandleFunc("/users", handler.RequireAdmin(userHandler.Create)).Methods("POST")
	protected.HandleFunc("/users/{userId}", handler.RequireAdmin(userHandler.Get)).Methods("GET")
	protected.HandleFunc("/users/{userId}/password", userHandler.ChangePassword).Methods("PUT")
	protected.HandleFunc("/users/{userId}", handler.RequireAdmin(userHandler.Delete)).Methods("DELETE")

	protected.HandleFunc("/clients", clientHandler.List).Methods("GET")
	protected.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	protected.HandleFunc("/clients/{clientId}", clientHandler.Get).Methods("GET")
	protected.HandleFunc("/clients/{clientId}", clientHandler.Update).Methods("PUT")
	protected.HandleFunc("/clients/{clientId}/state", clientHandler.UpdateState).Methods("PATCH")
	protected.HandleFunc("/clients/{clientId}", clientHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/payments", paymentHandler.List).Methods("GET")
	protected.HandleFunc("/payments", paymentHandler.Create).Methods("POST")
	protected.HandleFunc("/payments/summary/today", paymentHandler.TodaySummary).Methods("GET")
	protected.HandleFunc("/payments/client/{clientId}", paymentHandler.ListByClient).Methods("GET")
	protected.HandleFunc("/payments/{paymentId}", paymentHandler.Delete).Methods("DELETE")

	return router
}
