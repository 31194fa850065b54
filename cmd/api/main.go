package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalog-api/internal/config"
	"catalog-api/internal/database"
	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/router"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"

	"github.com/rs/zerolog"
)

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
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting catalog API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader, err := newUploader(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	catalog := service.NewCatalog(store, uploader, logger)

	// Per-client rate limiting; idle clients are evicted in the background
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	maxBody := cfg.Storage.MaxFileBytes*int64(cfg.Storage.MaxFiles) + 1<<20
	mux := router.New(router.Handlers{
		Categories: handler.NewCategoryHandler(catalog.Categories, catalog.Products, maxBody, logger),
		Products:   handler.NewProductHandler(catalog.Products, maxBody, logger),
		Users:      handler.NewUserHandler(catalog.Users, maxBody, logger),
		Health:     handler.Health(catalog, logger),
	}, router.Options{
		Authenticator: catalog.Users,
		RateLimiter:   limiter,
		UploadDir:     cfg.Storage.LocalDir,
		UploadPath:    cfg.Storage.LocalBaseURL,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.WriteTimeout,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// openStore builds the configured record store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Store, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory record store; data is lost on restart")
		return repository.NewMemoryStore(logger), func() {}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repository.NewPostgresStore(pool, logger), pool.Close, nil
}

// newUploader stores images on S3 when enabled, falling back to the local
// upload directory.
func newUploader(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (storage.Uploader, error) {
	limits := storage.DefaultLimits()
	limits.MaxFileBytes = cfg.MaxFileBytes
	limits.MaxFiles = cfg.MaxFiles

	disk := storage.NewDiskUploader(cfg.LocalDir, cfg.LocalBaseURL, limits, logger)

	if !cfg.S3Enabled {
		logger.Info().Str("dir", cfg.LocalDir).Msg("using local file system for uploads (S3 disabled)")
		return disk, nil
	}

	s3Uploader, err := storage.NewS3Uploader(ctx, storage.S3Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Prefix:        cfg.S3KeyPrefix(),
		PublicBaseURL: cfg.PublicBaseURL,
		Limits:        limits,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 uploader, falling back to local file system only")
		return disk, nil
	}

	return storage.NewFallbackUploader(s3Uploader, disk, logger), nil
}
