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

	customerapp "github.com/agizo/agizo-api/internal/domains/customers/application"
	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
)

const tracerName = "github.com/agizo/agizo-api/internal/domains/customers/adapters/observability/service"

// Service decorates the customer service with tracing, logging, and metrics.
type Service struct {
	inner   customerports.Service
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

// New wraps the core customer service.
func New(inner customerports.Service, opts ...Option) customerports.Service {
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

func (s *Service) CreateAccount(ctx context.Context, input customerports.CreateAccountInput) (*customerdomain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateAccount")
	defer span.End()

	s.logInfo(ctx, "creating account")
	account, err := s.inner.CreateAccount(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create account")
	}
	span.SetAttributes(attribute.Int64("account.id", account.ID))
	s.metrics.recordAccount(ctx)
	s.logInfo(ctx, "account created", slog.Int64("account.id", account.ID))
	return account, nil
}

func (s *Service) Register(ctx context.Context, input customerports.RegisterInput) (*customerdomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.Register")
	defer span.End()

	s.logInfo(ctx, "registering customer")
	profile, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register customer")
	}
	s.profileCreated(ctx, span, profile, "register")
	return profile, nil
}

func (s *Service) CreateForOwner(ctx context.Context, owner *customerdomain.Account, input customerports.CreateCustomerInput) (*customerdomain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateForOwner")
	defer span.End()

	var ownerID int64
	if owner != nil {
		ownerID = owner.ID
	}
	span.SetAttributes(attribute.Int64("account.id", ownerID))
	s.logInfo(ctx, "creating customer profile", slog.Int64("account.id", ownerID))
	profile, err := s.inner.CreateForOwner(ctx, owner, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer profile", slog.Int64("account.id", ownerID))
	}
	s.profileCreated(ctx, span, profile, "owner")
	return profile, nil
}

// Authenticate never logs the submitted email. Rejected credentials are logged at info level.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*customerdomain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.Authenticate")
	defer span.End()

	account, err := s.inner.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, customerapp.ErrInvalidCredentials) {
			span.SetAttributes(attribute.Bool("auth.success", false))
			s.logInfo(ctx, "authentication rejected")
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "authentication failed")
	}
	span.SetAttributes(attribute.Bool("auth.success", true), attribute.Int64("account.id", account.ID))
	return account, nil
}

func (s *Service) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByPhoneNumber")
	defer span.End()

	customer, err := s.inner.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, customerports.ErrNotFound) {
			span.SetAttributes(attribute.Bool("customer.found", false))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to look up customer")
	}
	span.SetAttributes(attribute.Bool("customer.found", true), attribute.Int64("customer.id", customer.ID))
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.GetCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer, err := s.inner.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, customerports.ErrNotFound) {
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to load customer", slog.Int64("customer.id", id))
	}
	return customer, nil
}

func (s *Service) profileCreated(ctx context.Context, span trace.Span, profile *customerdomain.Profile, variant string) {
	if profile == nil || profile.Customer == nil {
		return
	}
	span.SetAttributes(attribute.Int64("customer.id", profile.Customer.ID))
	s.metrics.recordCustomer(ctx, variant)
	s.logInfo(ctx, "customer profile created",
		slog.Int64("customer.id", profile.Customer.ID),
		slog.Int64("account.id", profile.Customer.AccountID),
		slog.String("variant", variant))
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
	accountsCreated  metric.Int64Counter
	customersCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	accounts, _ := m.Int64Counter("customers.service.accounts_created", metric.WithDescription("Number of accounts created"))
	customers, _ := m.Int64Counter("customers.service.created", metric.WithDescription("Number of customer profiles created"))
	return serviceMetrics{accountsCreated: accounts, customersCreated: customers}
}

func (m serviceMetrics) recordAccount(ctx context.Context) {
	if m.accountsCreated != nil {
		m.accountsCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCustomer(ctx context.Context, variant string) {
	if m.customersCreated != nil {
		m.customersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", variant)))
	}
}

var _ customerports.Service = (*Service)(nil)
