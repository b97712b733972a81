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

	"studio-booking-backend/config"
	"studio-booking-backend/internal/api"
	"studio-booking-backend/internal/availability"
	"studio-booking-backend/internal/booking"
	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "studio-backend ", log.LstdFlags)

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

	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Fatalf("invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("VAPID keys must be configured when push is enabled. Please generate them and add them to your config file.")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Notification channels are optional; the engine works without them.
	var mailer *notification.Mailer
	if cfg.Mail.Enabled {
		mailer = notification.NewMailer(cfg.Mail, loc)
		logger.Println("visitor mail notifications enabled")
	}
	var pool *notification.WorkerPool
	if webpushOptions != nil {
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, loc)
		pool.Start(ctx)
		logger.Printf("staff push notifications enabled (%d workers)", cfg.WorkerPool.Size)
	}
	notifier := notification.NewService(mailer, pool)

	materializer := availability.New(appStore, cfg.Booking.SlotDuration(), loc)
	engine := booking.NewEngine(appStore, notifier, cfg.Booking.HoldDuration(), loc)

	if cfg.Booking.HoldSweeperEnabled {
		go engine.RunHoldSweeper(ctx, cfg.Booking.HoldSweeperInterval)
	}

	// Initialize router
	handler := api.NewHandler(appStore, engine, materializer, webpushOptions, cfg.Booking.MaterializeHorizon())
	router := api.NewRouter(handler, &cfg.Server)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
