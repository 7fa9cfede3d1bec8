package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"game-rental-backend/config"
	"game-rental-backend/internal/api"
	"game-rental-backend/internal/db"
	"game-rental-backend/internal/notification"
	"game-rental-backend/internal/rental"
	"game-rental-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "rental-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize the entity store
	var appStore store.Store
	switch cfg.Database.Driver {
	case "memory":
		appStore = store.NewMemStore(cfg.Billing.RatePerMinute)
		logger.Println("in-memory store initialized")
	default:
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		appStore = store.NewGormStore(gormDB, cfg.Billing.RatePerMinute)
		logger.Printf("%s store initialized", cfg.Database.Driver)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Availability notifications are optional; without VAPID keys the
	// engine runs with no dispatcher.
	var webpushOptions *webpush.Options
	var engine *rental.Engine
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push is enabled but VAPID keys are not configured")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		workerPool.Start(ctx)
		engine = rental.NewEngine(appStore, workerPool)
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		engine = rental.NewEngine(appStore, nil)
	}

	// Auto-resume loop for paused rentals
	if cfg.Rentals.AutoResumeEnabled {
		resumer := rental.NewResumer(appStore, engine, cfg.Rentals.AutoResumeAfter, cfg.Rentals.ResumeCheckInterval)
		go resumer.Run(ctx)
	}

	// Initialize router
	router := api.NewRouter(cfg, appStore, engine, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
