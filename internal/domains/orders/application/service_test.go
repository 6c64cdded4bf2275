package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	"github.com/agizo/agizo-api/internal/domains/orders/adapters/memory"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/money"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

const knownPhone = "+254700000000"

type fakeDirectory struct {
	customers map[string]*customerdomain.Customer
	err       error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{customers: map[string]*customerdomain.Customer{
		knownPhone: {ID: 1, AccountID: 1, Name: "Amina", PhoneNumber: knownPhone},
	}}
}

func (f *fakeDirectory) FindByPhoneNumber(_ context.Context, phone string) (*customerdomain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.customers[phone]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, customerports.ErrNotFound
}

func (f *fakeDirectory) GetCustomer(_ context.Context, id int64) (*customerdomain.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, customerports.ErrNotFound
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ports.OrderPlaced
	err    error
	// committed is checked at notification time to prove the order was already stored.
	committed func(orderID int64) bool
	sawOrder  bool
}

func (n *recordingNotifier) NotifyOrderPlaced(_ context.Context, event ports.OrderPlaced) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	if n.committed != nil {
		n.sawOrder = n.committed(event.OrderID)
	}
	return n.err
}

type recordingPublisher struct {
	events []domain.OrderCreated
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, event domain.OrderCreated) error {
	p.events = append(p.events, event)
	return p.err
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func pricePtr(s string) *money.Amount {
	a := money.MustNew(s)
	return &a
}

func exampleInput() ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		CustomerPhoneNumber: strPtr(knownPhone),
		Items: []ports.ItemInput{
			{Name: strPtr("Soap"), Price: pricePtr("19.30"), Quantity: intPtr(3)},
			{Name: strPtr("Rice"), Price: pricePtr("35.99"), Quantity: intPtr(4)},
			{Name: strPtr("Salt"), Price: pricePtr("11.50"), Quantity: intPtr(10)},
		},
	}
}

func TestPlaceOrder_PersistsThenNotifies(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	notifier.committed = func(id int64) bool {
		_, err := repo.GetByID(context.Background(), id)
		return err == nil
	}
	publisher := &recordingPublisher{}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier), WithEventPublisher(publisher))

	result, err := svc.PlaceOrder(context.Background(), exampleInput())
	require.NoError(t, err)
	assert.Equal(t, string(StageComplete), result.Stage)
	assert.Equal(t, knownPhone, result.Customer.PhoneNumber)
	assert.Equal(t, "316.86", result.Order.Total().String())

	require.Len(t, notifier.events, 1)
	assert.True(t, notifier.sawOrder)
	assert.Equal(t, "Amina", notifier.events[0].CustomerName)
	assert.Equal(t, knownPhone, notifier.events[0].PhoneNumber)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, result.Order.ID, publisher.events[0].OrderID)
	assert.Equal(t, "316.86", publisher.events[0].Total.String())
	assert.NotEmpty(t, publisher.events[0].EventID)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier))

	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{CustomerPhoneNumber: strPtr(knownPhone), Items: []ports.ItemInput{}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "empty")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageInvalid, stageErr.Stage)
	assert.Zero(t, repo.Count())
	assert.Empty(t, notifier.events)
}

func TestPlaceOrder_ItemViolationsAreFieldKeyed(t *testing.T) {
	svc := NewService(memory.NewRepository(), newFakeDirectory())
	input := exampleInput()
	input.Items[0].Price = pricePtr("4.99")
	input.Items[1].Quantity = intPtr(0)
	input.Items[2].Name = nil

	_, err := svc.PlaceOrder(context.Background(), input)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.True(t, errs.Has("items[0].price", validation.CodeMinValue))
	assert.True(t, errs.Has("items[1].quantity", validation.CodeMinValue))
	assert.True(t, errs.Has("items[2].name", validation.CodeRequired))
}

func TestPlaceOrder_ShortPhoneNumber(t *testing.T) {
	svc := NewService(memory.NewRepository(), newFakeDirectory())
	input := exampleInput()
	input.CustomerPhoneNumber = strPtr("0700")

	_, err := svc.PlaceOrder(context.Background(), input)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.True(t, errs.Has("customer_phone_number", validation.CodeMinLength))
}

func TestPlaceOrder_PhoneNumberRequiredVersusBlank(t *testing.T) {
	svc := NewService(memory.NewRepository(), newFakeDirectory())

	input := exampleInput()
	input.CustomerPhoneNumber = nil
	_, err := svc.PlaceOrder(context.Background(), input)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{validation.CodeRequired}, errs.Codes()["customer_phone_number"])

	input.CustomerPhoneNumber = strPtr("   ")
	_, err = svc.PlaceOrder(context.Background(), input)
	errs, ok = validation.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{validation.CodeBlank}, errs.Codes()["customer_phone_number"])
}

func TestPlaceOrder_UnknownCustomerRejected(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewService(repo, newFakeDirectory())
	input := exampleInput()
	input.CustomerPhoneNumber = strPtr("+254799999999")

	_, err := svc.PlaceOrder(context.Background(), input)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.True(t, errs.Has("customer_phone_number", validation.CodeDoesNotExist))
	assert.Zero(t, repo.Count())
}

func TestPlaceOrder_UnknownCustomerAllowed(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	cfg := DefaultConfig()
	cfg.AllowUnknownCustomer = true
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier), WithConfig(cfg))
	input := exampleInput()
	input.CustomerPhoneNumber = strPtr("+254799999999")

	result, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Nil(t, result.Order.CustomerID)
	assert.Nil(t, result.Customer)
	assert.True(t, result.Notification.Skipped)
	assert.Empty(t, notifier.events)
}

func TestPlaceOrder_NotificationFailureKeepsOrder(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{err: errors.New("vendor down")}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier))

	result, err := svc.PlaceOrder(context.Background(), exampleInput())
	require.NoError(t, err)
	require.Error(t, result.Notification.Err)

	stored, err := repo.GetByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
}

func TestPlaceOrder_PersistenceFailureSkipsNotification(t *testing.T) {
	repo := memory.NewRepository()
	repo.WithItemFault(func(index int, _ domain.LineItem) error {
		if index == 1 {
			return errors.New("constraint violated")
		}
		return nil
	})
	notifier := &recordingNotifier{}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier))

	_, err := svc.PlaceOrder(context.Background(), exampleInput())
	require.ErrorIs(t, err, ports.ErrPersistence)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePersistenceFailed, stageErr.Stage)
	assert.Zero(t, repo.Count())
	assert.Empty(t, notifier.events)
}

func TestPlaceOrder_DirectoryFailure(t *testing.T) {
	dir := newFakeDirectory()
	dir.err = errors.New("connection reset")
	svc := NewService(memory.NewRepository(), dir)

	_, err := svc.PlaceOrder(context.Background(), exampleInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier), WithIdempotencyStore(memory.NewIdempotencyStore()))
	input := exampleInput()
	input.IdempotencyKey = "checkout-1"

	first, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, knownPhone, second.Customer.PhoneNumber)
	assert.Equal(t, 1, repo.Count())
	assert.Len(t, notifier.events, 1)

	input.Items = input.Items[:1]
	_, err = svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

// forgetfulStore never finds a key through Get, so only Reserve can stop a duplicate order.
type forgetfulStore struct {
	*memory.IdempotencyStore
}

func (forgetfulStore) Get(context.Context, string) (*ports.IdempotencyRecord, error) {
	return nil, nil
}

// gatedDirectory holds the first lookup until release is closed.
type gatedDirectory struct {
	*fakeDirectory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (d *gatedDirectory) FindByPhoneNumber(ctx context.Context, phone string) (*customerdomain.Customer, error) {
	first := false
	d.once.Do(func() { first = true })
	if first {
		close(d.entered)
		<-d.release
	}
	return d.fakeDirectory.FindByPhoneNumber(ctx, phone)
}

func TestPlaceOrder_SameKeyCommitsOneOrder(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, newFakeDirectory(), WithNotifier(notifier),
		WithIdempotencyStore(forgetfulStore{memory.NewIdempotencyStore()}))
	input := exampleInput()
	input.IdempotencyKey = "k1"

	first, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, repo.Count())
	assert.Len(t, notifier.events, 1)
}

func TestPlaceOrder_ConcurrentSameKey(t *testing.T) {
	repo := memory.NewRepository()
	notifier := &recordingNotifier{}
	dir := &gatedDirectory{fakeDirectory: newFakeDirectory(), entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(repo, dir, WithNotifier(notifier), WithIdempotencyStore(memory.NewIdempotencyStore()))
	input := exampleInput()
	input.IdempotencyKey = "k1"

	type outcome struct {
		result *ports.PlaceOrderResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.PlaceOrder(context.Background(), input)
		done <- outcome{result, err}
	}()
	<-dir.entered

	_, err := svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrIdempotencyInProgress)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	close(dir.release)
	winner := <-done
	require.NoError(t, winner.err)
	assert.False(t, winner.result.Replayed)

	replayed, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, replayed.Replayed)
	assert.Equal(t, winner.result.Order.ID, replayed.Order.ID)
	assert.Equal(t, 1, repo.Count())
	assert.Len(t, notifier.events, 1)
}

func TestPlaceOrder_FailedWriteReleasesKey(t *testing.T) {
	repo := memory.NewRepository()
	repo.WithItemFault(func(int, domain.LineItem) error { return errors.New("disk full") })
	store := memory.NewIdempotencyStore()
	svc := NewService(repo, newFakeDirectory(), WithIdempotencyStore(store))
	input := exampleInput()
	input.IdempotencyKey = "k1"

	_, err := svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ports.ErrPersistence)
	released, err := store.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.Nil(t, released)

	repo.WithItemFault(nil)
	result, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	stored, err := store.Get(context.Background(), "k1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Order.ID, stored.OrderID)
}

func TestFingerprintPlaceOrder_PriceByValue(t *testing.T) {
	a := exampleInput()
	b := exampleInput()
	b.Items[0].Price = pricePtr("19.3")
	b.IdempotencyKey = "ignored"

	fa, err := FingerprintPlaceOrder(a)
	require.NoError(t, err)
	fb, err := FingerprintPlaceOrder(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	b.Items[0].Quantity = intPtr(4)
	fc, err := FingerprintPlaceOrder(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestGetOrder(t *testing.T) {
	svc := NewService(memory.NewRepository(), newFakeDirectory())
	placed, err := svc.PlaceOrder(context.Background(), exampleInput())
	require.NoError(t, err)

	details, err := svc.GetOrder(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina", details.Customer.Name)
	assert.Equal(t, "316.86", details.Order.Total().String())

	_, err = svc.GetOrder(context.Background(), 999)
	require.ErrorIs(t, err, ports.ErrNotFound)
}
