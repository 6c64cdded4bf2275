package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	goredis "github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	atclient "github.com/agizo/agizo-api/internal/clients/http/africastalking"
	"github.com/agizo/agizo-api/internal/domains/notifications/adapters/dryrun"
	atsender "github.com/agizo/agizo-api/internal/domains/notifications/adapters/external/africastalking"
	snssender "github.com/agizo/agizo-api/internal/domains/notifications/adapters/external/sns"
	notificationmemory "github.com/agizo/agizo-api/internal/domains/notifications/adapters/memory"
	notificationpostgres "github.com/agizo/agizo-api/internal/domains/notifications/adapters/persistence/postgres"
	notificationapp "github.com/agizo/agizo-api/internal/domains/notifications/application"
	notificationdomain "github.com/agizo/agizo-api/internal/domains/notifications/domain"
	notificationports "github.com/agizo/agizo-api/internal/domains/notifications/ports"
	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
	platformpostgres "github.com/agizo/agizo-api/internal/platform/postgres"
)

// ConnectDatabase opens PostgreSQL when a DSN is configured. A nil DB means the
// in-memory adapters should be used.
func ConnectDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

// BuildSMSSender selects the vendor adapter named by cfg.SMSProvider.
func BuildSMSSender(ctx context.Context, cfg Config, logger *slog.Logger) (notificationports.SMSSender, error) {
	switch cfg.SMSProvider {
	case SMSProviderAfricasTalking:
		c, err := atclient.New(atclient.Config{
			Username: cfg.AfricasTalking.Username,
			APIKey:   cfg.AfricasTalking.APIKey,
			BaseURL:  cfg.AfricasTalking.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return atsender.NewSender(c), nil
	case SMSProviderSNS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return snssender.NewSender(awssns.NewFromConfig(awsCfg)), nil
	case SMSProviderLog:
		return dryrun.NewSender(logger), nil
	}
	return nil, fmt.Errorf("unknown sms provider %q", cfg.SMSProvider)
}

// BuildGateway assembles the notification gateway with a durable attempt log when db is set.
func BuildGateway(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (*notificationapp.Gateway, error) {
	sender, err := BuildSMSSender(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	var attempts notificationports.AttemptLog = notificationmemory.NewAttemptLog()
	if db != nil {
		attempts = notificationpostgres.NewAttemptLog(db)
	}
	gateway, err := notificationapp.NewGateway(sender, notificationapp.Config{
		SenderID: cfg.SMSSenderID,
		Template: notificationdomain.DefaultTemplate,
	}, notificationapp.WithAttemptLog(attempts))
	if err != nil {
		return nil, err
	}
	logger.Info("sms gateway configured", slog.String("provider", sender.Provider()))
	return gateway, nil
}

// ConnectRedis returns nil when REDIS_ADDR is unset or unreachable.
func ConnectRedis(ctx context.Context, cfg Config, logger *slog.Logger) *goredis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, idempotency keys fall back to the database", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connection established", slog.String("addr", cfg.RedisAddr))
	return rdb
}

// DialTemporal connects a traced Temporal client.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
