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

	"campus-market/internal/database"
	"campus-market/internal/handler"
	"campus-market/internal/metrics"
	"campus-market/internal/outbox"
	"campus-market/internal/payment"
	"campus-market/internal/realtime"
	"campus-market/internal/router"
	"campus-market/internal/service"
	"campus-market/internal/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger
	logger.Info().Str("instance_id", cfg.Server.InstanceID).Msg("starting campus-market API server")

	if err := database.Migrate(ctx, a.pool, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	repos := a.repositories()
	m := metrics.New()

	// Uploads stay disabled unless S3 is configured. The store is left as an
	// untyped nil so the file service can tell.
	var store storage.ObjectStore
	if cfg.S3.Enabled {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		store = s3Store
	} else {
		logger.Info().Msg("object storage disabled, file uploads will be rejected")
	}

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Without redis this instance keeps its own sessions and never relays.
	var (
		registry realtime.SessionRegistry = realtime.NewLocalRegistry()
		bus      realtime.Bus
		redisBus *realtime.RedisBus
	)
	if rdb != nil {
		registry = realtime.NewRedisRegistry(rdb, cfg.Redis.SessionTTL)
		redisBus = realtime.NewRedisBus(rdb, logger)
		bus = redisBus
	}

	hub := realtime.NewHub(cfg.Server.InstanceID, registry, logger)
	defer hub.Close()
	notifier := realtime.NewNotifier(hub, registry, bus, logger)

	m.RegisterGaugeFunc("realtime", "sessions", "Users with a registered realtime session on this instance.",
		func() float64 { return float64(hub.Sessions()) })
	m.RegisterGaugeFunc("realtime", "connections", "Open realtime connections on this instance.",
		func() float64 { return float64(hub.Connections()) })

	dispatcher := outbox.NewDispatcher(repos.notifications, a.mailSender(), notifier, cfg.Outbox, m, logger)

	tokens := a.tokenManager()
	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Currency, cfg.Stripe.FrontendURL, logger)

	// Initialize services
	authService := service.NewAuthService(repos.users, tokens, logger)
	productService := service.NewProductService(repos.products, logger)
	categoryService := service.NewCategoryService(repos.categories, logger)
	cartService := service.NewCartService(repos.carts, repos.orders, m, logger)
	orderService := service.NewOrderService(repos.orders, repos.products, logger)
	paymentService := service.NewPaymentService(service.PaymentDeps{
		Payments:      repos.payments,
		Orders:        repos.orders,
		Products:      repos.products,
		Users:         repos.users,
		Notifications: repos.notifications,
		Provider:      provider,
		Outbox:        dispatcher,
		Metrics:       m,
	}, logger)
	reportService := service.NewReportService(repos.reports, logger)
	adminService := service.NewAdminService(repos.users, repos.products, repos.reports, logger)
	fileService := service.NewFileService(store, repos.users, repos.products, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Products:   handler.NewProductHandler(productService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Cart:       handler.NewCartHandler(cartService, logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
		Payments:   handler.NewPaymentHandler(paymentService, logger),
		Reports:    handler.NewReportHandler(reportService, logger),
		Admin:      handler.NewAdminHandler(adminService, logger),
		Files:      handler.NewFileHandler(fileService, logger),
		Realtime:   hub,
	}, tokens, m, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background workers stop when ctx is cancelled.
	workers, workerCtx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		return dispatcher.Run(workerCtx)
	})
	if redisBus != nil {
		workers.Go(func() error {
			return redisBus.Subscribe(workerCtx, hub.Relay)
		})
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	workerErrors := make(chan error, 1)
	go func() {
		workerErrors <- workers.Wait()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		cancel()
		return fmt.Errorf("server error: %w", err)

	case err := <-workerErrors:
		cancel()
		_ = server.Close()
		if err == nil {
			err = errors.New("background workers exited")
		}
		return fmt.Errorf("worker error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Websocket connections are hijacked, so Shutdown does not wait for them.
		hub.Close()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		cancel()
		if err := <-workerErrors; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("background worker stopped with error")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
