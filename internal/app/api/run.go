package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	customermemory "github.com/agizo/agizo-api/internal/domains/customers/adapters/memory"
	customerobs "github.com/agizo/agizo-api/internal/domains/customers/adapters/observability"
	customerpostgres "github.com/agizo/agizo-api/internal/domains/customers/adapters/persistence/postgres"
	customerapp "github.com/agizo/agizo-api/internal/domains/customers/application"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	orderkafka "github.com/agizo/agizo-api/internal/domains/orders/adapters/events/kafka"
	orderredis "github.com/agizo/agizo-api/internal/domains/orders/adapters/idempotency/redis"
	ordermemory "github.com/agizo/agizo-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/agizo/agizo-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/agizo/agizo-api/internal/domains/orders/adapters/persistence/postgres"
	orderworkflows "github.com/agizo/agizo-api/internal/domains/orders/adapters/workflows"
	orderapp "github.com/agizo/agizo-api/internal/domains/orders/application"
	orderdomain "github.com/agizo/agizo-api/internal/domains/orders/domain"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/platform/migrations"
	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
)

const serviceName = "agizo-api"

// Run boots the orders HTTP API with observability, repositories, and notifications wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := ConnectDatabase(ctx, cfg, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	customerService := customerobs.New(
		customerapp.NewService(buildCustomerRepository(db)),
		customerobs.WithLogger(logger),
		customerobs.WithTracer(instruments.Tracer("internal.customers.application")),
		customerobs.WithMeter(instruments.Meter("internal.customers.application")),
	)

	opts := []orderapp.Option{
		orderapp.WithConfig(orderapp.Config{
			Rules:                orderdomain.Rules{MinItemPrice: cfg.MinItemPrice},
			AllowUnknownCustomer: cfg.AllowUnknownCustomer,
		}),
	}

	idempotency, closeIdempotency := buildIdempotencyStore(ctx, cfg, db, logger)
	defer closeIdempotency()
	opts = append(opts, orderapp.WithIdempotencyStore(idempotency))

	notifier, closeNotifier, err := buildNotifier(ctx, cfg, db, instruments)
	if err != nil {
		return err
	}
	defer closeNotifier()
	if notifier != nil {
		opts = append(opts, orderapp.WithNotifier(notifier))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := orderkafka.NewPublisher(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.Warn("kafka unavailable, order events disabled", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			opts = append(opts, orderapp.WithEventPublisher(publisher))
			logger.Info("order events enabled", slog.Any("brokers", cfg.KafkaBrokers))
		}
	}

	orderService := orderobs.New(
		orderapp.NewService(buildOrderRepository(db), customerService, opts...),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	deps := RouterDeps{
		ServiceName: serviceName,
		Logger:      logger,
		Customers:   customerService,
		Orders:      orderService,
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			deps.DB = sqlDB
		}
	}
	return serve(ctx, cfg.Addr(), NewRouter(deps), logger)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Agizo API listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Agizo API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down Agizo API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildCustomerRepository(db *gorm.DB) customerports.Repository {
	if db == nil {
		return customermemory.NewRepository()
	}
	return customerpostgres.NewRepository(db)
}

func buildOrderRepository(db *gorm.DB) orderports.Repository {
	if db == nil {
		return ordermemory.NewRepository()
	}
	return orderpostgres.NewRepository(db)
}

// buildIdempotencyStore prefers redis, then postgres, then memory.
func buildIdempotencyStore(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (orderports.IdempotencyStore, func()) {
	if rdb := ConnectRedis(ctx, cfg, logger); rdb != nil {
		return orderredis.NewStore(rdb, orderredis.DefaultTTL), func() { _ = rdb.Close() }
	}
	if db != nil {
		return orderpostgres.NewIdempotencyStore(db), func() {}
	}
	return ordermemory.NewIdempotencyStore(), func() {}
}

func buildNotifier(ctx context.Context, cfg Config, db *gorm.DB, instruments *platformobservability.Instruments) (orderports.Notifier, func(), error) {
	logger := instruments.Logger
	switch cfg.NotificationMode {
	case NotificationDisabled:
		logger.Warn("order confirmations disabled")
		return nil, func() {}, nil
	case NotificationTemporal:
		temporalClient, err := DialTemporal(cfg, instruments)
		if err == nil {
			logger.Info("Temporal order notifications enabled", slog.String("namespace", cfg.TemporalNamespace))
			return orderworkflows.NewTemporalNotifier(temporalClient), temporalClient.Close, nil
		}
		logger.Warn("Temporal workflows unavailable, sending confirmations inline", slog.String("error", err.Error()))
	}
	gateway, err := BuildGateway(ctx, cfg, db, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure sms gateway: %w", err)
	}
	return orderworkflows.NewInlineNotifier(gateway, ""), func() {}, nil
}
