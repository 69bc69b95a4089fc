package main

import (
	"context"
	"fmt"

	"campus-market/internal/auth"
	"campus-market/internal/config"
	"campus-market/internal/database"
	"campus-market/internal/mailer"
	"campus-market/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds what every subcommand needs: configuration, a logger and the
// database pool.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, pool: pool}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

type repositories struct {
	users         repository.UserRepository
	categories    repository.CategoryRepository
	products      repository.ProductRepository
	carts         repository.CartRepository
	orders        repository.OrderRepository
	payments      repository.PaymentRepository
	reports       repository.ReportRepository
	notifications repository.NotificationRepository
}

func (a *app) repositories() repositories {
	return repositories{
		users:         repository.NewUserRepository(a.pool, a.logger),
		categories:    repository.NewCategoryRepository(a.pool, a.logger),
		products:      repository.NewProductRepository(a.pool, a.logger),
		carts:         repository.NewCartRepository(a.pool, a.logger),
		orders:        repository.NewOrderRepository(a.pool, a.logger),
		payments:      repository.NewPaymentRepository(a.pool, a.logger),
		reports:       repository.NewReportRepository(a.pool, a.logger),
		notifications: repository.NewNotificationRepository(a.pool, a.logger),
	}
}

func (a *app) tokenManager() *auth.TokenManager {
	return auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
}

// mailSender falls back to logging messages when SMTP is not configured.
func (a *app) mailSender() mailer.Sender {
	if a.cfg.Mail.Enabled {
		return mailer.NewSMTPSender(a.cfg.Mail, a.logger)
	}
	a.logger.Info().Msg("mail disabled, outgoing emails will only be logged")
	return mailer.NewLogSender(a.logger)
}

// redisClient returns nil when redis is disabled.
func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if !a.cfg.Redis.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	return rdb, nil
}
