package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/platform/temporal/sequences"
)

const (
	// OrderNotificationWorkflowName is the public identifier for registering the workflow.
	OrderNotificationWorkflowName = "orders.workflows.Notification"
	// OrderNotificationTaskQueue is the queue consumed by the worker sending order confirmations.
	OrderNotificationTaskQueue = "ORDER_NOTIFICATIONS"
)

// OrderNotificationWorkflowInput carries the committed order to confirm.
type OrderNotificationWorkflowInput struct {
	Event   ports.OrderPlaced
	TraceID string
}

// OrderNotificationWorkflow confirms a committed order to its customer by SMS.
func OrderNotificationWorkflow(ctx workflow.Context, input OrderNotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Event.OrderID
	logger.Info("OrderNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	if err := sequences.RunOrderNotificationSequence(ctx, input.Event); err != nil {
		logger.Error("OrderNotificationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("OrderNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
