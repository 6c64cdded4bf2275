package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	notificationdomain "github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	orderworkflows "github.com/agizo/agizo-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.Notifier = (*InlineNotifier)(nil)
	_ ports.Notifier = (*TemporalNotifier)(nil)
)

// SMSGateway is the notification capability the inline notifier relies on.
type SMSGateway interface {
	Notify(ctx context.Context, recipient notificationdomain.Recipient, template string) (*notificationdomain.Receipt, error)
}

// InlineNotifier sends the confirmation SMS synchronously on the request path.
type InlineNotifier struct {
	gateway  SMSGateway
	template string
}

// NewInlineNotifier wraps gateway. An empty template uses the gateway default.
func NewInlineNotifier(gateway SMSGateway, template string) *InlineNotifier {
	return &InlineNotifier{gateway: gateway, template: template}
}

func (n *InlineNotifier) NotifyOrderPlaced(ctx context.Context, event ports.OrderPlaced) error {
	if n == nil || n.gateway == nil {
		return errors.New("inline order notifier not configured")
	}
	_, err := n.gateway.Notify(ctx, RecipientFor(event), n.template)
	return err
}

// RecipientFor maps an order event to the SMS addressee.
func RecipientFor(event ports.OrderPlaced) notificationdomain.Recipient {
	return notificationdomain.Recipient{
		Name:        event.CustomerName,
		PhoneNumber: event.PhoneNumber,
		Reference:   fmt.Sprintf("order:%d", event.OrderID),
	}
}

// TemporalNotifier hands the confirmation to a durable workflow and returns once it has started.
type TemporalNotifier struct {
	client    client.Client
	taskQueue string
}

func NewTemporalNotifier(c client.Client) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: orderworkflows.OrderNotificationTaskQueue}
}

func (n *TemporalNotifier) NotifyOrderPlaced(ctx context.Context, event ports.OrderPlaced) error {
	if n == nil || n.client == nil {
		return errors.New("temporal order notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                    NotificationWorkflowID(event.OrderID),
		TaskQueue:             n.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := orderworkflows.OrderNotificationWorkflowInput{Event: event, TraceID: workflowTraceID(ctx)}
	_, err := n.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderNotificationWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// NotificationWorkflowID is deterministic per order so an order is confirmed at most once.
func NotificationWorkflowID(orderID int64) string {
	return fmt.Sprintf("order-notification-%d", orderID)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
