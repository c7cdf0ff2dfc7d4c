package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/exp/slog"

	"crownsync/internal/app/server/api"
	"crownsync/internal/app/server/config"
	"crownsync/internal/infrastructure/blob"
	"crownsync/internal/infrastructure/storage/postgres"
	"crownsync/internal/utils/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, cfg.DB.DatabaseURI, nil, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	dataDir, err := filepath.Abs(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	blobs, err := blob.NewFSStore(afero.NewOsFs(), dataDir)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(storage, blobs, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanupSessions(ctx, postgres.NewSessionRepository(storage, log), log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("address", cfg.Server.RunAddress), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cleanupSessions(ctx context.Context, repo *postgres.SessionRepository, log *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn("session cleanup failed", logger.Err(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions removed", slog.Int64("count", n))
			}
		}
	}
}
