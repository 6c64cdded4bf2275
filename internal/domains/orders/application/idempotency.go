package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/agizo/agizo-api/internal/domains/orders/ports"
)

type normalizedPlaceOrderInput struct {
	CustomerPhoneNumber string           `json:"customerPhoneNumber"`
	Items               []normalizedItem `json:"items"`
}

type normalizedItem struct {
	Name     *string `json:"name"`
	Price    *string `json:"price"`
	Quantity *int    `json:"quantity"`
}

// FingerprintPlaceOrder builds a deterministic hash of the order payload, excluding the idempotency key.
// Prices are compared by value, so "10.5" and "10.50" hash alike.
func FingerprintPlaceOrder(input ports.PlaceOrderInput) (string, error) {
	payload, err := json.Marshal(normalizePlaceOrderInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizePlaceOrderInput(input ports.PlaceOrderInput) normalizedPlaceOrderInput {
	normalized := normalizedPlaceOrderInput{
		Items: make([]normalizedItem, 0, len(input.Items)),
	}
	if input.CustomerPhoneNumber != nil {
		normalized.CustomerPhoneNumber = strings.TrimSpace(*input.CustomerPhoneNumber)
	}
	for _, item := range input.Items {
		n := normalizedItem{Quantity: item.Quantity}
		if item.Name != nil {
			name := strings.TrimSpace(*item.Name)
			n.Name = &name
		}
		if item.Price != nil {
			price := item.Price.String()
			n.Price = &price
		}
		normalized.Items = append(normalized.Items, n)
	}
	return normalized
}
