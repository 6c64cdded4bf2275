package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agizo/agizo-api/internal/app/api"
	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
)

const (
	serviceName      = "agizo-notification-retry"
	defaultBatchSize = 100
)

// notification-retry resends order confirmations whose last attempt failed.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger
	db, cleanup := api.ConnectDatabase(ctx, cfg, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; no attempt log to retry from")
	}

	gateway, err := api.BuildGateway(ctx, cfg, db, logger)
	if err != nil {
		log.Fatalf("failed to configure sms gateway: %v", err)
	}
	resent, err := gateway.RetryFailed(ctx, batchSizeFromEnv())
	if err != nil {
		log.Fatalf("notification retry failed after %d resends: %v", resent, err)
	}
	logger.Info("notification retry completed", slog.Int("resent", resent))
}

func batchSizeFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("NOTIFICATION_RETRY_BATCH"))
	if raw == "" {
		return defaultBatchSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultBatchSize
	}
	return n
}
