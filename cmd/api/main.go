package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perfume-store/internal/config"
	"perfume-store/internal/database"
	"perfume-store/internal/handler"
	"perfume-store/internal/pricing"
	"perfume-store/internal/repository"
	"perfume-store/internal/router"
	"perfume-store/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
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
	logger.Info().Msg("starting perfume-store API server")

	// Root context cancels on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool and apply schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	feeRepo := repository.NewFeeRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	warrantyRepo := repository.NewWarrantyRepository(pool, logger)

	// Initialize pricing engine and services
	engine := pricing.NewEngine(cfg.Pricing, logger)
	resolver := service.NewCouponResolver(couponRepo, cfg.Pricing.CouponExpiryDays, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo, customerRepo, addressRepo, productRepo, feeRepo,
		resolver, engine, logger,
	)
	warrantyService := service.NewWarrantyService(warrantyRepo, logger)
	orderService := service.NewOrderService(orderRepo, warrantyService, logger)

	// Initialize HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	warrantyHandler := handler.NewWarrantyHandler(warrantyService, logger)

	// Initialize router
	mux := router.New(checkoutHandler, orderHandler, warrantyHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	g.Go(func() error {
		runExpirySweep(gCtx, warrantyService, cfg.Warranty.ExpirySweepInterval, logger)
		return nil
	})

	return g.Wait()
}

// runExpirySweep periodically flips active warranties past their end
// date to expired, until the context is cancelled. Sweep failures are
// logged and retried on the next tick.
func runExpirySweep(ctx context.Context, warranties service.WarrantyService, interval time.Duration, logger zerolog.Logger) {
	logger.Info().Dur("interval", interval).Msg("warranty expiry sweep started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("warranty expiry sweep stopped")
			return
		case <-ticker.C:
			expired, err := warranties.ExpireOutdated(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("warranty expiry sweep failed")
				continue
			}
			if expired > 0 {
				logger.Info().Int("expired", expired).Msg("warranties expired by sweep")
			}
		}
	}
}
