package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	notificationapp "github.com/agizo/agizo-api/internal/domains/notifications/application"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
)

const (
	// SendOrderSMSActivityName sends the order confirmation through the configured SMS vendor.
	SendOrderSMSActivityName = "orders.activities.SendOrderSMS"

	errTypeNoRecipient = "NoRecipient"
)

// Activities groups activities that act on committed orders.
type Activities struct {
	notifier ports.Notifier
}

// NewActivities expects a notifier that sends synchronously, never one that starts another workflow.
func NewActivities(notifier ports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

func (a *Activities) SendOrderSMS(ctx context.Context, event ports.OrderPlaced) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("order sms activity not initialized", "orderId", event.OrderID)
		return errors.New("order sms activity not initialized")
	}
	logger.Info("SendOrderSMS activity started", "orderId", event.OrderID, "attempt", activity.GetInfo(ctx).Attempt)
	if err := a.notifier.NotifyOrderPlaced(ctx, event); err != nil {
		if errors.Is(err, notificationapp.ErrNoRecipient) {
			logger.Warn("SendOrderSMS has no recipient, giving up", "orderId", event.OrderID)
			return temporal.NewNonRetryableApplicationError(err.Error(), errTypeNoRecipient, err)
		}
		logger.Error("SendOrderSMS activity failed", "orderId", event.OrderID, "error", err)
		return err
	}
	logger.Info("SendOrderSMS activity completed", "orderId", event.OrderID)
	return nil
}
