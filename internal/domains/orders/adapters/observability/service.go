package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderapp "github.com/agizo/agizo-api/internal/domains/orders/application"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

const tracerName = "github.com/agizo/agizo-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input orderports.PlaceOrderInput) (*orderports.PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.item_count", len(input.Items)), attribute.Bool("order.idempotent", input.IdempotencyKey != "")))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("order.item_count", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		stage := stageOf(err)
		span.SetAttributes(attribute.String("order.stage", stage))
		s.metrics.recordRejected(ctx, stage)
		if errors.Is(err, validation.ErrInvalid) || errors.Is(err, orderports.ErrIdempotencyConflict) {
			s.logInfo(ctx, "order rejected", slog.String("order.stage", stage), slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.stage", stage))
	}

	orderID := result.Order.ID
	span.SetAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.stage", result.Stage),
		attribute.String("order.total", result.Order.Total().String()),
		attribute.Bool("order.replayed", result.Replayed),
	)
	if result.Replayed {
		s.logInfo(ctx, "order replayed", slog.Int64("order.id", orderID))
		return result, nil
	}

	switch {
	case result.Notification.Err != nil:
		s.metrics.recordNotificationFailure(ctx)
		span.AddEvent("notification failed", trace.WithAttributes(attribute.String("error", result.Notification.Err.Error())))
		s.logError(ctx, "order confirmation not sent", result.Notification.Err, slog.Int64("order.id", orderID))
	case result.Notification.Skipped:
		s.logInfo(ctx, "order confirmation skipped, no customer", slog.Int64("order.id", orderID))
	}
	if result.PublishErr != nil {
		s.logError(ctx, "order event not published", result.PublishErr, slog.Int64("order.id", orderID))
	}
	if result.IdempotencyErr != nil {
		s.logError(ctx, "idempotency key not stored", result.IdempotencyErr, slog.Int64("order.id", orderID))
	}
	s.metrics.recordPlaced(ctx, result.Customer != nil)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", orderID),
		slog.Int("order.item_count", len(result.Order.Items)),
		slog.String("order.total", result.Order.Total().String()),
		slog.String("order.stage", result.Stage),
	)
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*orderports.OrderDetails, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func stageOf(err error) string {
	var stageErr *orderapp.StageError
	if errors.As(err, &stageErr) {
		return string(stageErr.Stage)
	}
	return "unknown"
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced         metric.Int64Counter
	ordersRejected       metric.Int64Counter
	notificationFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders committed"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order requests that did not commit"))
	failures, _ := m.Int64Counter("orders.service.notification_failures", metric.WithDescription("Number of order confirmations that failed to send"))
	return serviceMetrics{ordersPlaced: placed, ordersRejected: rejected, notificationFailures: failures}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, hasCustomer bool) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.has_customer", hasCustomer)))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, stage string) {
	if m.ordersRejected != nil {
		m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("order.stage", stage)))
	}
}

func (m serviceMetrics) recordNotificationFailure(ctx context.Context) {
	if m.notificationFailures != nil {
		m.notificationFailures.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
