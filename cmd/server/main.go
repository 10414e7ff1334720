package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"gitea.jw6.us/james/syllacal/internal/api"
	appauth "gitea.jw6.us/james/syllacal/internal/auth"
	"gitea.jw6.us/james/syllacal/internal/config"
	"gitea.jw6.us/james/syllacal/internal/extract"
	httpserver "gitea.jw6.us/james/syllacal/internal/http"
	"gitea.jw6.us/james/syllacal/internal/staging"
	"gitea.jw6.us/james/syllacal/internal/store"
)

func main() {
	log.Println("Starting SyllaCal server...")

	// Local development keeps secrets in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("failed to create db pool: %v", err)
	}
	defer pool.Close()

	if err := store.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	stor := store.New(pool)

	sessionManager, err := appauth.NewSessionManager(cfg)
	if err != nil {
		log.Fatalf("failed to initialize session manager: %v", err)
	}
	authService, err := appauth.NewService(ctx, cfg, stor, sessionManager)
	if err != nil {
		log.Fatalf("failed to initialize auth service: %v", err)
	}

	extractor := extract.NewGeminiExtractor(cfg.Gemini.APIKeys, cfg.Gemini.Models)
	registry := staging.NewRegistry()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	apiHandler := api.NewHandler(cfg, stor, authService, extractor, registry, api.NewCalendarFactory(), rng)

	r := httpserver.NewRouter(cfg, stor, authService, apiHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // analysis calls wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
