package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathclash/internal/cache"
	"mathclash/internal/config"
	"mathclash/internal/database"
	"mathclash/internal/handlers"
	"mathclash/internal/notify"
	"mathclash/internal/repository"
	"mathclash/internal/service"
	"mathclash/internal/worker"
)

func main() {
	// Load configuration; the bot token is mandatory
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Optional Redis leaderboard cache; nil when REDIS_ADDR is unset
	topCache := cache.NewFromConfig(cfg)
	if topCache != nil {
		defer topCache.Close()
		log.Printf("Leaderboard cache enabled (redis: %s, ttl: %s)", cfg.RedisAddr, cfg.TopCacheTTL)
	}

	// Initialize repositories and services
	rankingRepo := repository.NewRankingRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	gameService := service.NewGameService(rankingRepo, achievementRepo, topCache)

	notifier, err := notify.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Background broadcasts. No chat sender is wired at this seam yet:
	// the HTTP gateway pulls replies, it cannot push, so announcements
	// go out via email until a push transport registers itself.
	broadcasts := worker.NewBroadcastWorker(rankingRepo, notifier, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broadcasts.Start(ctx)
	defer broadcasts.Stop()

	// Initialize handlers
	limiter := handlers.NewRateLimiter(30, time.Minute)
	eventHandler := handlers.NewEventHandler(gameService, limiter)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /event", handlers.RequireToken(cfg.BotToken, eventHandler.HandleEvent))
	mux.HandleFunc("GET /healthz", eventHandler.HandleHealth)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
