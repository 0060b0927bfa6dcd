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

	"seoulmate-backend/internal/config"
	"seoulmate-backend/internal/database"
	"seoulmate-backend/internal/handlers"
	"seoulmate-backend/internal/middleware"
	"seoulmate-backend/internal/repository"
	"seoulmate-backend/internal/router"
	"seoulmate-backend/internal/services"
	"seoulmate-backend/internal/youtube"
)

func main() {
	log.Println("🚀 Starting SeoulMate Backend...")

	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	quotaRepo := repository.NewQuotaRepo(pool)
	communityRepo := repository.NewCommunityRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelCandidates())
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, jwtAuth)
	quotaService := services.NewQuotaService(quotaRepo, cfg.FreeLimit)
	videoClient := youtube.NewClient()

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	summarizeHandler := handlers.NewSummarizeHandler(videoClient, geminiService, quotaService, cfg.MaxInputChars)
	communityHandler := handlers.NewCommunityHandler(communityRepo, userRepo)
	adminHandler := handlers.NewAdminHandler(communityRepo, userRepo)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		redisClient,
		authHandler,
		summarizeHandler,
		communityHandler,
		adminHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ SeoulMate Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
