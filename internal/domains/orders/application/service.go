package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

const (
	MinPhoneNumberLength = 10

	fieldPhoneNumber = "customer_phone_number"
	fieldItems       = "items"
)

// Config tunes order acceptance.
type Config struct {
	Rules domain.Rules
	// AllowUnknownCustomer stores orders for unregistered phone numbers with no customer
	// instead of rejecting them.
	AllowUnknownCustomer bool
}

func DefaultConfig() Config {
	return Config{Rules: domain.DefaultRules()}
}

// Service orchestrates order placement: validate, resolve the customer, commit, then notify.
type Service struct {
	repo        ports.Repository
	customers   ports.CustomerDirectory
	notifier    ports.Notifier
	publisher   ports.EventPublisher
	idempotency ports.IdempotencyStore
	cfg         Config
	newEventID  func() string
}

type Option func(*Service)

func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

func NewService(repo ports.Repository, customers ports.CustomerDirectory, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		customers:  customers,
		cfg:        DefaultConfig(),
		newEventID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder runs the order creation workflow. Errors are *StageError values wrapping
// ErrInvalidInput, ports.ErrIdempotencyConflict or ports.ErrPersistence. Notification and
// event publishing failures are reported on the result and never fail the call.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	items, err := s.validate(input)
	if err != nil {
		return nil, fail(StageInvalid, mapError(err))
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	reserved := false
	if key != "" && s.idempotency != nil {
		fingerprint, err := FingerprintPlaceOrder(input)
		if err != nil {
			return nil, fail(StageValidated, err)
		}
		existing, err := s.idempotency.Reserve(ctx, key, fingerprint)
		if err != nil {
			return nil, fail(StageValidated, err)
		}
		if existing != nil {
			return s.replay(ctx, existing, fingerprint)
		}
		reserved = true
	}

	customer, err := s.resolveCustomer(ctx, *input.CustomerPhoneNumber)
	if err != nil {
		s.release(ctx, key, reserved)
		return nil, err
	}

	order, err := s.repo.CreateWithItems(ctx, customer, items)
	if err != nil {
		s.release(ctx, key, reserved)
		if !errors.Is(err, ports.ErrPersistence) {
			err = fmt.Errorf("%w: %w", ports.ErrPersistence, err)
		}
		return nil, fail(StagePersistenceFailed, err)
	}
	result := &ports.PlaceOrderResult{
		OrderDetails: ports.OrderDetails{Order: order, Customer: customer},
		Stage:        string(StagePersisted),
	}

	if reserved {
		result.IdempotencyErr = s.idempotency.Complete(context.WithoutCancel(ctx), key, order.ID)
	}

	result.Notification = s.notify(ctx, order, customer)
	result.Stage = string(StageNotified)

	if s.publisher != nil {
		result.PublishErr = s.publisher.PublishOrderCreated(ctx, domain.NewOrderCreated(s.newEventID(), order))
	}
	result.Stage = string(StageComplete)
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*ports.OrderDetails, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &ports.OrderDetails{Order: order}
	if order.CustomerID != nil && s.customers != nil {
		customer, err := s.customers.GetCustomer(ctx, *order.CustomerID)
		if err != nil && !errors.Is(err, customerports.ErrNotFound) {
			return nil, err
		}
		details.Customer = customer
	}
	return details, nil
}

func (s *Service) validate(input ports.PlaceOrderInput) ([]domain.LineItem, error) {
	var errs validation.Errors
	validation.RequiredText(&errs, fieldPhoneNumber, input.CustomerPhoneNumber, MinPhoneNumberLength, 0)
	if len(input.Items) == 0 {
		errs.Add(fieldItems, validation.CodeEmpty, validation.MsgEmptyList())
	}
	rules := s.cfg.Rules
	for i, in := range input.Items {
		prefix := fmt.Sprintf("%s[%d].", fieldItems, i)
		rules.CheckName(&errs, prefix+"name", in.Name)
		rules.CheckPrice(&errs, prefix+"price", in.Price)
		rules.CheckQuantity(&errs, prefix+"quantity", in.Quantity)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, domain.LineItem{
			Name:     strings.TrimSpace(*in.Name),
			Price:    *in.Price,
			Quantity: *in.Quantity,
		})
	}
	return items, nil
}

func (s *Service) resolveCustomer(ctx context.Context, phoneNumber string) (*customerdomain.Customer, error) {
	if s.customers == nil {
		return nil, fail(StageValidated, errors.New("customer directory not configured"))
	}
	customer, err := s.customers.FindByPhoneNumber(ctx, customerdomain.NormalizePhoneNumber(phoneNumber))
	switch {
	case errors.Is(err, customerports.ErrNotFound):
		customer = nil
	case err != nil:
		return nil, fail(StageValidated, err)
	}
	if customer == nil && !s.cfg.AllowUnknownCustomer {
		errs := validation.Errors{{
			Field:   fieldPhoneNumber,
			Code:    validation.CodeDoesNotExist,
			Message: "No customer is registered with this phone number.",
		}}
		return nil, fail(StageInvalid, mapError(errs))
	}
	return customer, nil
}

func (s *Service) notify(ctx context.Context, order *domain.Order, customer *customerdomain.Customer) ports.NotificationOutcome {
	if customer == nil || s.notifier == nil {
		return ports.NotificationOutcome{Skipped: true}
	}
	err := s.notifier.NotifyOrderPlaced(ctx, ports.OrderPlaced{
		OrderID:      order.ID,
		CustomerName: customer.Name,
		PhoneNumber:  customer.PhoneNumber,
		CreatedAt:    order.CreatedAt,
	})
	return ports.NotificationOutcome{Err: err}
}

func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, fingerprint string) (*ports.PlaceOrderResult, error) {
	if record.RequestHash != fingerprint {
		return nil, fail(StageInvalid, ports.ErrIdempotencyConflict)
	}
	if record.Pending() {
		return nil, fail(StageInvalid, ports.ErrIdempotencyInProgress)
	}
	details, err := s.GetOrder(ctx, record.OrderID)
	if err != nil {
		return nil, fail(StageValidated, err)
	}
	return &ports.PlaceOrderResult{OrderDetails: *details, Replayed: true, Stage: string(StageComplete)}, nil
}

// release frees a reservation whose order was never committed so the client can retry.
func (s *Service) release(ctx context.Context, key string, reserved bool) {
	if !reserved {
		return
	}
	_ = s.idempotency.Release(context.WithoutCancel(ctx), key)
}

var _ ports.Service = (*Service)(nil)
