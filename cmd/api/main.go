package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/config"
	"restaurant-orders/internal/database"
	"restaurant-orders/internal/handler"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/metrics"
	"restaurant-orders/internal/redis"
	"restaurant-orders/internal/repository"
	"restaurant-orders/internal/router"
	"restaurant-orders/internal/service"
	"restaurant-orders/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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
	logger.Info().Msg("starting restaurant orders server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize session store
	redisClient, err := redis.New(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	credentialRepo := repository.NewCredentialRepository(pool, logger)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	// Initialize authentication backend and identity manager
	sessions, err := auth.NewSessionStore(redisClient, cfg.Auth.SessionTTL())
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	throttle := auth.NewThrottle(redisClient, cfg.Auth.SignInMaxAttempts, cfg.Auth.SignInLockout())
	backend := auth.NewBackend(
		credentialRepo,
		sessions,
		throttle,
		auth.NewGoogleVerifier(cfg.Auth.GoogleClientID),
		auth.TokenConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.JWTIssuer,
			TTL:    cfg.Auth.TokenTTL(),
		},
		logger,
	)
	manager := identity.NewManager(backend, userRepo, cfg.Auth.AdminEmails, logger)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, newImageUploader(ctx, cfg.Media, logger), logger)
	orderService := service.NewOrderService(orderRepo, orderMetrics, logger)
	carts := cart.NewRegistry()
	checkout := cart.NewCheckout(orderService, logger)

	// Initialize router
	mux := router.New(
		router.Handlers{
			Health: handler.NewHealthHandler(map[string]handler.Pinger{
				"postgres": pool,
				"redis":    redisClient,
			}, logger),
			View:    handler.NewViewHandler(catalogService, orderService, carts, cfg.Auth.GoogleClientID, logger),
			Auth:    handler.NewAuthHandler(manager, carts, cfg.Server.SecureCookies, logger),
			Product: handler.NewProductHandler(catalogService, logger),
			Order:   handler.NewOrderHandler(orderService, logger),
			Cart:    handler.NewCartHandler(carts, catalogService, checkout, logger),
			User:    handler.NewUserHandler(manager, logger),
		},
		router.Options{
			Sessions:       manager,
			HTTPMetrics:    httpMetrics,
			Gatherer:       registry,
			MediaDir:       cfg.Media.LocalDir,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
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

// newImageUploader stores images on S3 when enabled, falling back to the local media
// directory when S3 cannot be reached.
func newImageUploader(ctx context.Context, cfg config.MediaConfig, logger zerolog.Logger) storage.ImageUploader {
	local := storage.NewLocalUploader(cfg.LocalDir, cfg.Prefix, cfg.PublicBaseURL, logger)
	if !cfg.S3Enabled {
		logger.Info().Msg("using local file system for product images (S3 disabled)")
		return local
	}

	s3Uploader, err := storage.NewS3Uploader(ctx, cfg.Bucket, cfg.Region, cfg.Prefix, cfg.S3PublicURL(), logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 uploader, falling back to local file system only")
		return local
	}
	return storage.NewFallbackUploader(s3Uploader, local, logger)
}
