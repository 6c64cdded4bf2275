package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	orderactivities "github.com/agizo/agizo-api/internal/platform/temporal/activities/orders"
)

// NotificationRetryPolicy bounds how long a vendor outage is retried before giving up.
var NotificationRetryPolicy = &temporal.RetryPolicy{
	InitialInterval:    5 * time.Second,
	BackoffCoefficient: 2.0,
	MaximumInterval:    time.Minute,
	MaximumAttempts:    6,
}

// RunOrderNotificationSequence sends the order confirmation SMS.
func RunOrderNotificationSequence(ctx workflow.Context, event ports.OrderPlaced) error {
	logger := workflow.GetLogger(ctx)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         NotificationRetryPolicy,
	}
	logger.Info("order notification sequence started", "orderId", event.OrderID)
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.SendOrderSMSActivityName, event).Get(ctx, nil)
	if err != nil {
		logger.Error("order notification sequence failed", "orderId", event.OrderID, "error", err)
		return err
	}
	logger.Info("order notification sequence sent", "orderId", event.OrderID)
	return nil
}
