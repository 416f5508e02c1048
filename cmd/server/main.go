package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/auth-examples/internal/config"
	"github.com/hongminglow/auth-examples/internal/logging"
	"github.com/hongminglow/auth-examples/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		slog.Error("build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if envErr != nil {
		log.Debug("no .env file found; relying on existing environment")
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("SECRET_KEY is not set; signing tokens with the built-in default secret")
	}
	if cfg.APIKey == "" {
		log.Warn("API_KEY is not set; every API key will be rejected")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(cfg, store, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("auth service listening",
			"addr", cfg.HTTPAddress(),
			"rate_limit", cfg.Rate.String(),
			"metrics", cfg.MetricsEnabled,
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("graceful shutdown error", "error", err)
	}
	return nil
}
