package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"

	"caredash/internal/config"
	"caredash/internal/content"
	"caredash/internal/dashboard"
	"caredash/internal/db"
	"caredash/internal/handlers"
	"caredash/internal/jobs"
	"caredash/internal/memo"
	"caredash/internal/metrics"
	"caredash/internal/server"
	"caredash/internal/weather"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to the warehouse
	database, err := db.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to warehouse: %v", err)
	}
	defer database.Close()

	if cfg.WarehouseBootstrap {
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatalf("Failed to bootstrap warehouse: %v", err)
		}
		log.Println("Warehouse schema and demo data ready")
	}

	metrics.Init(database)

	// Sessions and memoized results share Redis when configured
	var (
		sessionStorage fiber.Storage
		memoBackend    memo.Backend
	)
	if cfg.RedisURL != "" {
		store := redis.New(redis.Config{URL: cfg.RedisURL})
		defer store.Close()
		sessionStorage = store
		memoBackend = store
		log.Println("Using Redis for sessions and memoized queries")
	} else {
		mem := memo.NewMemoryBackend()
		memoBackend = mem
		go jobs.NewMemoSweeper(mem, time.Minute).Start(ctx)
	}

	// Meal plan and calendar
	store, err := content.NewStore(cfg.ContentFile)
	if err != nil {
		log.Fatalf("Failed to load content file: %v", err)
	}
	go func() {
		if err := store.Watch(ctx); err != nil {
			log.Printf("Content watcher disabled: %v", err)
		}
	}()

	svc := dashboard.NewService(
		database,
		memo.New(memoBackend, cfg.CacheTTL),
		weather.NewClient(cfg),
		store,
		cfg,
	)

	branding, err := handlers.LoadBranding(cfg)
	if err != nil {
		log.Fatalf("Failed to load branding assets: %v", err)
	}

	srv := server.New(cfg, branding, sessionStorage)
	if err := srv.RegisterRoutes(ctx, svc); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
