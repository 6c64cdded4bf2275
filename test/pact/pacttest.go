//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "agizo-api"
	ConsumerName = "agizo-storefront"

	StateCustomerRegistered = "customer +254700000000 is registered"
	StateOrderExists        = "order with id 1 exists"
	StateNoOrders           = "no orders exist"
)

const (
	CustomerName  = "Amina"
	CustomerPhone = "+254700000000"
	CustomerEmail = "amina@example.com"
	// CustomerPassword only needs to satisfy registration rules.
	CustomerPassword = "pact-pass-123"

	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 999

	ExampleOrderTotal = "316.86"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the three line order whose total is ExampleOrderTotal.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"customer_phone_number": CustomerPhone,
		"items": []map[string]any{
			{"name": "Soap", "price": "19.30", "quantity": 3},
			{"name": "Rice", "price": "35.99", "quantity": 4},
			{"name": "Salt", "price": "11.50", "quantity": 10},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
