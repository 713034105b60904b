package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"supply-desk/internal/catalog"
	"supply-desk/internal/config"
	"supply-desk/internal/database"
	"supply-desk/internal/draft"
	"supply-desk/internal/handler"
	"supply-desk/internal/notify"
	"supply-desk/internal/repository"
	"supply-desk/internal/router"
	"supply-desk/internal/service"
	"supply-desk/internal/upstream"
	"supply-desk/internal/watcher"

	"github.com/rs/zerolog"
)

const draftJanitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting supply-desk API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	submissionRepo := repository.NewSubmissionRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	// Upstream dashboard API
	client := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Token:   cfg.Upstream.Token,
		Timeout: cfg.Upstream.Timeout(),
	}, logger)

	// Background workers stop when ctx is cancelled
	var workers sync.WaitGroup
	goWorker := func(fn func()) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			fn()
		}()
	}

	// Product catalog
	products := catalog.New(newCatalogLoader(ctx, cfg, client, logger), logger)
	goWorker(func() { products.Run(ctx, cfg.Catalog.RefreshInterval()) })

	// Live event hub
	hub := notify.NewHub(logger)
	goWorker(func() { hub.Run(ctx) })

	// Drafts
	drafts := draft.NewStore()
	goWorker(func() { drafts.RunJanitor(ctx, cfg.Draft.TTL(), draftJanitorInterval, logger) })

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, hub, logger)
	draftService := service.NewDraftService(drafts, products, client, submissionRepo, cfg.Upstream.SubmitTimeout(), logger)

	// Order watcher
	if cfg.Watcher.Enabled {
		orders := watcher.New(client, notificationService, watcher.Config{
			Interval:    cfg.Watcher.Interval(),
			PollTimeout: cfg.Watcher.PollTimeout(),
			AdminRole:   cfg.Watcher.AdminRole,
		}, logger)
		goWorker(func() {
			if err := orders.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("order watcher stopped")
			}
		})
	} else {
		logger.Info().Msg("order watcher disabled")
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Health:       handler.NewHealthHandler(products, hub.Subscribers),
		Catalog:      handler.NewCatalogHandler(products, logger),
		Draft:        handler.NewDraftHandler(draftService, logger),
		Notification: handler.NewNotificationHandler(notificationService, logger),
		Events:       hub,
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.SubmitTimeout() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		cancel()
		workers.Wait()
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the watcher and other workers first so no event is pushed mid-shutdown
		cancel()
		workers.Wait()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCatalogLoader picks the catalog source. File and S3 sources fall back to
// the upstream API when they fail.
func newCatalogLoader(ctx context.Context, cfg *config.Config, client upstream.Client, logger zerolog.Logger) catalog.Loader {
	apiLoader := catalog.NewAPILoader(client)

	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		logger.Info().Str("file", cfg.Catalog.File).Msg("loading catalog from file")
		return catalog.NewFallbackLoader(logger, catalog.NewFileLoader(cfg.Catalog.File, logger), apiLoader)

	case config.CatalogSourceS3:
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Key, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to the upstream API")
			return apiLoader
		}
		logger.Info().Str("bucket", cfg.S3.Bucket).Str("key", cfg.S3.Key).Msg("loading catalog from S3")
		return catalog.NewFallbackLoader(logger, s3Loader, apiLoader)

	default:
		logger.Info().Msg("loading catalog from the upstream API")
		return apiLoader
	}
}
