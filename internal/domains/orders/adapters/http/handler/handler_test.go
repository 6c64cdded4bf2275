package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	customermemory "github.com/agizo/agizo-api/internal/domains/customers/adapters/memory"
	customerapp "github.com/agizo/agizo-api/internal/domains/customers/application"
	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	ordermemory "github.com/agizo/agizo-api/internal/domains/orders/adapters/memory"
	orderapp "github.com/agizo/agizo-api/internal/domains/orders/application"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
)

const phone = "+254700000000"

func init() {
	customerdomain.HashCost = bcrypt.MinCost
}

type stubNotifier struct {
	calls int
	err   error
}

func (n *stubNotifier) NotifyOrderPlaced(context.Context, orderports.OrderPlaced) error {
	n.calls++
	return n.err
}

type fixture struct {
	router   *gin.Engine
	repo     *ordermemory.Repository
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	customers := customerapp.NewService(customermemory.NewRepository())
	name, phoneNumber := "Amina", phone
	_, err := customers.Register(context.Background(), customerports.RegisterInput{
		Name:        &name,
		PhoneNumber: &phoneNumber,
		Email:       "amina@example.com",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)

	f := &fixture{repo: ordermemory.NewRepository(), notifier: &stubNotifier{}}
	svc := orderapp.NewService(f.repo, customers,
		orderapp.WithNotifier(f.notifier),
		orderapp.WithIdempotencyStore(ordermemory.NewIdempotencyStore()),
	)
	f.router = gin.New()
	NewHandler(svc).Routes(f.router.Group("/api/v1"))
	return f
}

func doJSON(router http.Handler, method, path string, body any, configure ...func(*http.Request)) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range configure {
		fn(req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func exampleBody() map[string]any {
	return map[string]any{
		"customer_phone_number": phone,
		"items": []map[string]any{
			{"name": "Soap", "price": "19.30", "quantity": 3},
			{"name": "Rice", "price": 35.99, "quantity": 4},
			{"name": "Salt", "price": "11.50", "quantity": 10},
		},
	}
}

func withKey(key string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(HeaderIdempotencyKey, key) }
}

func TestPlaceOrder_Created(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": phone,
		"items": []map[string]any{
			{"name": "Product A", "price": 10.05, "quantity": 2},
			{"name": "Product B", "price": 25.00, "quantity": 1},
			{"name": "Product C", "price": 7.50, "quantity": 4},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Status string `json:"status"`
		Desc   string `json:"desc"`
		Order  struct {
			ID       int64 `json:"id"`
			Customer struct {
				PhoneNumber string `json:"phone_number"`
			} `json:"customer"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "create order for customer user", body.Desc)
	assert.Equal(t, phone, body.Order.Customer.PhoneNumber)
	assert.Positive(t, body.Order.ID)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Empty(t, rec.Header().Get(HeaderIdempotentReplayed))
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": phone,
		"items":                 []any{},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "empty")
	assert.Equal(t, 0, f.repo.Count())
	assert.Zero(t, f.notifier.calls)
}

func TestPlaceOrder_ItemBounds(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": phone,
		"items": []map[string]any{
			{"name": "Gum", "price": "4.99", "quantity": 0},
		},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "items[0].price")
	assert.Contains(t, body, "items[0].quantity")
	assert.Contains(t, body, "min_value")
	assert.Equal(t, 0, f.repo.Count())
}

// problemCodes extracts extensions.codes from a validation problem body.
func problemCodes(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var problem struct {
		Extensions struct {
			Codes map[string][]string `json:"codes"`
		} `json:"extensions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem.Extensions.Codes
}

func TestPlaceOrder_MalformedPrice(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": phone,
		"items": []map[string]any{
			{"name": "Gum", "price": "abc", "quantity": 1},
			{"name": "Tea", "price": "12.00", "quantity": 2.5},
		},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	codes := problemCodes(t, rec)
	assert.Equal(t, []string{"invalid"}, codes["items[0].price"])
	assert.Equal(t, []string{"invalid"}, codes["items[1].quantity"])
	assert.NotContains(t, codes, "items[0].quantity")
	assert.Contains(t, rec.Body.String(), "A valid number is required.")
	assert.Equal(t, 0, f.repo.Count())
}

func TestPlaceOrder_WrongTypes(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": 254700000000,
		"items":                 []any{"Gum", map[string]any{"name": 7, "price": "1.00", "quantity": 1}},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	codes := problemCodes(t, rec)
	assert.Equal(t, []string{"invalid"}, codes["customer_phone_number"])
	assert.Equal(t, []string{"invalid"}, codes["items[0]"])
	assert.Equal(t, []string{"invalid"}, codes["items[1].name"])

	notList := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": phone,
		"items":                 "Gum",
	})
	require.Equal(t, http.StatusBadRequest, notList.Code)
	assert.Equal(t, []string{"invalid"}, problemCodes(t, notList)["items"])
}

func TestPlaceOrder_NotAnObject(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", []any{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body must be a JSON object")
}

func TestPlaceOrder_MissingPhoneIsRequired(t *testing.T) {
	f := newFixture(t)

	missing := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"items": []map[string]any{{"price": "10.00", "quantity": 1}},
	})
	require.Equal(t, http.StatusBadRequest, missing.Code)
	codes := problemCodes(t, missing)
	assert.Equal(t, []string{"required"}, codes["customer_phone_number"])
	assert.Equal(t, []string{"required"}, codes["items[0].name"])

	blank := doJSON(f.router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_phone_number": "  ",
		"items":                 []map[string]any{{"name": "Gum", "price": "10.00", "quantity": 1}},
	})
	require.Equal(t, http.StatusBadRequest, blank.Code)
	assert.Equal(t, []string{"blank"}, problemCodes(t, blank)["customer_phone_number"])
}

func TestPlaceOrder_NotificationFailureStillCreated(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("sms gateway down")

	rec := doJSON(f.router, http.MethodPost, "/api/v1/orders/", exampleBody())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.repo.Count())
	assert.Equal(t, 1, f.notifier.calls)
}

func TestPlaceOrder_IdempotencyKey(t *testing.T) {
	f := newFixture(t)

	first := doJSON(f.router, http.MethodPost, "/api/v1/orders/", exampleBody(), withKey("order-1"))
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := doJSON(f.router, http.MethodPost, "/api/v1/orders/", exampleBody(), withKey("order-1"))
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplayed))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, f.repo.Count())
	assert.Equal(t, 1, f.notifier.calls)

	changed := exampleBody()
	changed["items"] = []map[string]any{{"name": "Soap", "price": "19.30", "quantity": 1}}
	conflict := doJSON(f.router, http.MethodPost, "/api/v1/orders/", changed, withKey("order-1"))
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestGetOrder_Detail(t *testing.T) {
	f := newFixture(t)
	created := doJSON(f.router, http.MethodPost, "/api/v1/orders/", exampleBody())
	require.Equal(t, http.StatusCreated, created.Code)
	var env struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &env))

	rec := doJSON(f.router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/", env.Order.ID), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail struct {
		Total string `json:"total"`
		Items []struct {
			Name   string `json:"name"`
			Price  string `json:"price"`
			Amount string `json:"amount"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "316.86", detail.Total)
	require.Len(t, detail.Items, 3)
	assert.Equal(t, "Rice", detail.Items[0].Name)
	assert.Equal(t, "143.96", detail.Items[0].Amount)
	assert.Equal(t, "11.50", detail.Items[2].Price)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(f.router, http.MethodGet, "/api/v1/orders/999/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(f.router, http.MethodGet, "/api/v1/orders/abc/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
