package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agizo/agizo-api/internal/shared/money"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

// ErrMalformedBody is returned when the body is not a JSON object.
var ErrMalformedBody = errors.New("request body must be a JSON object")

type rawPlaceOrderRequest struct {
	CustomerPhoneNumber json.RawMessage `json:"customer_phone_number"`
	Items               json.RawMessage `json:"items"`
}

type rawItemRequest struct {
	Name     json.RawMessage `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
}

// DecodePlaceOrderRequest decodes body one field at a time so a value of the wrong type is
// reported under its own key, such as items[0].price, as a validation.Errors value.
// Absent and null fields decode to nil.
func DecodePlaceOrderRequest(body []byte) (PlaceOrderRequest, error) {
	var raw rawPlaceOrderRequest
	if !isObject(body) {
		return PlaceOrderRequest{}, ErrMalformedBody
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PlaceOrderRequest{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	var errs validation.Errors
	req := PlaceOrderRequest{
		CustomerPhoneNumber: decodeField[string](&errs, "customer_phone_number", raw.CustomerPhoneNumber, validation.MsgInvalidString()),
	}
	if present(raw.Items) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw.Items, &items); err != nil {
			errs.Add("items", validation.CodeInvalid, validation.MsgInvalidList())
		}
		req.Items = make([]ItemRequest, 0, len(items))
		for i, rawItem := range items {
			field := fmt.Sprintf("items[%d]", i)
			var fields rawItemRequest
			if !isObject(rawItem) || json.Unmarshal(rawItem, &fields) != nil {
				errs.Add(field, validation.CodeInvalid, validation.MsgInvalidObject())
				req.Items = append(req.Items, ItemRequest{})
				continue
			}
			req.Items = append(req.Items, ItemRequest{
				Name:     decodeField[string](&errs, field+".name", fields.Name, validation.MsgInvalidString()),
				Price:    decodeField[money.Amount](&errs, field+".price", fields.Price, validation.MsgInvalidNumber()),
				Quantity: decodeField[int](&errs, field+".quantity", fields.Quantity, validation.MsgInvalidInteger()),
			})
		}
	}
	if err := errs.Err(); err != nil {
		return PlaceOrderRequest{}, err
	}
	return req, nil
}

func decodeField[T any](errs *validation.Errors, field string, raw json.RawMessage, message string) *T {
	if !present(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		errs.Add(field, validation.CodeInvalid, message)
		return nil
	}
	return &v
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
