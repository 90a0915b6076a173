package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hongminglow/all-in-auth/internal/config"
	"github.com/hongminglow/all-in-auth/internal/logging"
	"github.com/hongminglow/all-in-auth/internal/server"
	"github.com/hongminglow/all-in-auth/internal/storage/driver"
)

func main() {
	if err := run(); err != nil {
		slog.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, level)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found; relying on existing environment")
	}
	if cfg.TokenSigningKey == "" {
		logger.Warn("TOKEN_SIGNING_KEY is empty; tokens are signed with the username only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := driver.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(cfg, server.Deps{Store: store, Logger: logger})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth service listening", "addr", srv.Addr(), "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", "error", err)
	}
	return nil
}
