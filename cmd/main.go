// @title DriveGo Backend API
// @version 1.0
// @description DriveGo Backend API for car rental booking
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	_ "DRIVEGO_BACK-END/docs" // This is required for swagger
	"DRIVEGO_BACK-END/internal/booking"
	"DRIVEGO_BACK-END/internal/config"
	"DRIVEGO_BACK-END/internal/handlers"
	"DRIVEGO_BACK-END/internal/repository/postgres"
	"DRIVEGO_BACK-END/internal/routes"
	"DRIVEGO_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// pgxpool + simple protocol (required when connecting through PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "drivego-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000" // 30s
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Ping at boot so misconfiguration fails fast
	{
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping: %v", err)
		}
	}

	// Redis backs idempotency keys and the catalog cache. The server still
	// works without it, just without deduplication and caching.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: redis unavailable at %s: %v", cfg.RedisAddr(), err)
			redisClient = nil
		}
	}

	emailService := utils.NewEmailService(&cfg.Email)

	var mailer booking.Mailer
	if cfg.IsEmailConfigured() {
		mailer = emailService
	}
	bookingRepo := postgres.NewBookingRepository(pool)
	bookingService := booking.NewService(bookingRepo, redisClient, mailer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(pool, cfg)
	googleAuthHandler := handlers.NewGoogleAuthHandler(pool, cfg)
	forgotPasswordHandler := handlers.NewForgotPasswordHandler(pool, cfg, emailService)
	carsHandler := handlers.NewCarsHandler(pool, redisClient)
	bookingsHandler := handlers.NewBookingsHandler(bookingService)
	savedCarsHandler := handlers.NewSavedCarsHandler(pool)
	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	// Setup all routes
	routes.SetupRoutes(cfg, authHandler, googleAuthHandler, forgotPasswordHandler,
		carsHandler, bookingsHandler, savedCarsHandler, healthHandler)

	// --- HTTP Server + Graceful Shutdown ---

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	// Wrap the default mux with CORS
	handler := c.Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}
