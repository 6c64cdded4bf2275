package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/agizo/agizo-api/internal/app/api"
	orderworkflows "github.com/agizo/agizo-api/internal/domains/orders/adapters/workflows"
	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
	orderactivities "github.com/agizo/agizo-api/internal/platform/temporal/activities/orders"
	temporalorders "github.com/agizo/agizo-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "agizo-worker"
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
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := api.ConnectDatabase(ctx, cfg, logger)
	defer cleanupDB()
	gateway, err := api.BuildGateway(ctx, cfg, db, logger)
	if err != nil {
		logger.Error("failed to configure sms gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := orderactivities.NewActivities(orderworkflows.NewInlineNotifier(gateway, ""))

	temporalClient, err := api.DialTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, temporalorders.OrderNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(temporalorders.OrderNotificationWorkflow, workflow.RegisterOptions{Name: temporalorders.OrderNotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendOrderSMS, activity.RegisterOptions{Name: orderactivities.SendOrderSMSActivityName})

	logger.Info("worker listening", slog.String("taskQueue", temporalorders.OrderNotificationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
