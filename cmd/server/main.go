package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bizdesk/bizdesk/internal/api"
	"github.com/bizdesk/bizdesk/internal/auth"
	"github.com/bizdesk/bizdesk/internal/config"
	"github.com/bizdesk/bizdesk/internal/contact"
	"github.com/bizdesk/bizdesk/internal/finance"
	"github.com/bizdesk/bizdesk/internal/kv"
	"github.com/bizdesk/bizdesk/internal/sweeper"
)

func main() {
	// A .env file is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "engine", cfg.StoreEngine, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	userRepo := auth.NewKVUserRepository(store, cfg.KeyPrefix)
	sessionRepo := auth.NewKVSessionRepository(store, cfg.KeyPrefix)
	limiter := auth.NewLimiter(nil)
	authService := auth.NewService(userRepo, sessionRepo, limiter, []byte(cfg.JWTSecret), cfg.BcryptCost, nil)

	contactService := contact.NewService(contact.NewKVRepository(store, cfg.KeyPrefix), nil)
	financeService := finance.NewService(finance.NewKVRepository(store, cfg.KeyPrefix), nil)

	sweep := sweeper.New(sessionRepo, time.Duration(cfg.SweepInterval)*time.Second, nil)
	go sweep.Start(ctx)

	router := api.NewRouter(api.RouterDeps{
		Store:       store,
		AuthService: authService,
		Contacts:    contactService,
		Finance:     financeService,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting BizDesk server", "port", cfg.Port, "version", cfg.Version, "store", cfg.StoreEngine)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.StoreEngine {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "file":
		return kv.NewFileStore(cfg.StoreFile)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres engine")
		}
		return kv.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store engine %q", cfg.StoreEngine)
	}
}
