package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-courses/internal/auth"
	"github.com/diewo77/go-courses/internal/config"
	"github.com/diewo77/go-courses/internal/i18n"
	"github.com/diewo77/go-courses/internal/repo"
	"github.com/diewo77/go-courses/internal/store"
	"github.com/diewo77/go-courses/internal/view"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// Startup order matters and mirrors the app's init sequence:
	// translations, then store seeding, then session resolution, then router
	// wiring. Each step degrades instead of aborting where it can.
	catalog, err := i18n.Load(cfg.LocalesDir)
	if err != nil {
		log.Printf("warning: translations unavailable, falling back to literal keys: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DatabasePath, err)
	}

	st, err := store.New(db)
	if err != nil {
		log.Fatalf("Failed to prepare store: %v", err)
	}
	repository := repo.New(st)
	if err := repository.Initialize(cfg.SeedPath); err != nil {
		log.Printf("warning: seed data unavailable, continuing with empty collections: %v", err)
	}

	// Resolve (and, when stale, clear) the persisted session before serving.
	if u, ok := repository.LoggedInUser(); ok {
		log.Printf("Resuming session for %s (%s)", u.Username, u.Role)
	}

	gate := auth.New(repository, cfg.AdminCode, cfg.DemoLogins)
	renderer := view.New(cfg.TemplatesDir, catalog, cfg.Env == "development")
	app := NewApp(cfg, repository, gate, catalog, renderer)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withLogging(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (env=%s, demo logins=%v)", cfg.Port, cfg.Env, cfg.DemoLogins)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
