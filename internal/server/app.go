// Package server initializes and runs the campaignstore server: database
// and migrations, object storage, the persistence engine, and the HTTP API
// with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediaplanhq/campaignstore/internal/logging"
	"github.com/mediaplanhq/campaignstore/internal/server/config"
	"github.com/mediaplanhq/campaignstore/internal/server/db"
	"github.com/mediaplanhq/campaignstore/internal/server/httpapi"
	"github.com/mediaplanhq/campaignstore/internal/server/services"
	"github.com/mediaplanhq/campaignstore/internal/server/storage"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conn, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.RunMigrations(ctx, conn, "postgres"); err != nil {
		return nil, fmt.Errorf("db migrate error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	engine := services.NewCampaignService(conn, store, logger, cfg.UploadGroupSize, cfg.BatchChunkSize)
	api := httpapi.NewServer(engine, []byte(cfg.SecretKey), logger)

	srv := &http.Server{
		Addr:    cfg.EndpointAddrHTTP,
		Handler: api.Router(),
	}

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until the context is cancelled or a stop signal
// arrives, then drains in-flight requests.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.server.Shutdown(shutdownCtx)
}
