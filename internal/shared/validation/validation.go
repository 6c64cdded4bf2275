// Package validation collects field-keyed input errors so transports can render them together.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalid matches any Errors value via errors.Is.
var ErrInvalid = errors.New("validation failed")

// Error codes shared by every bounded context.
const (
	CodeRequired         = "required"
	CodeBlank            = "blank"
	CodeEmpty            = "empty"
	CodeInvalid          = "invalid"
	CodeMinLength        = "min_length"
	CodeMaxLength        = "max_length"
	CodeMinValue         = "min_value"
	CodeMaxValue         = "max_value"
	CodeMaxDigits        = "max_digits"
	CodeMaxDecimalPlaces = "max_decimal_places"
	CodeMaxWholeDigits   = "max_whole_digits"
	CodeDoesNotExist     = "does_not_exist"
)

// FieldError is a single violation on one input field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// Errors is the accumulated set of violations for one request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Add appends a violation.
func (e *Errors) Add(field, code, message string) {
	*e = append(*e, FieldError{Field: field, Code: code, Message: message})
}

// Merge appends every violation of other.
func (e *Errors) Merge(other Errors) {
	*e = append(*e, other...)
}

// Err returns nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Has reports whether field carries a violation with the given code.
func (e Errors) Has(field, code string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// Fields returns the distinct field names in sorted order.
func (e Errors) Fields() []string {
	seen := map[string]struct{}{}
	for _, fe := range e {
		seen[fe.Field] = struct{}{}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Messages groups human readable messages by field.
func (e Errors) Messages() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Codes groups machine readable codes by field.
func (e Errors) Codes() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Code)
	}
	return out
}

// As extracts the Errors carried by err, if any.
func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// Message helpers keep the wording identical across contexts.

func MsgRequired() string { return "This field is required." }

func MsgBlank() string { return "This field may not be blank." }

func MsgEmptyList() string { return "This list may not be empty." }

func MsgInvalidString() string { return "Not a valid string." }

func MsgInvalidNumber() string { return "A valid number is required." }

func MsgInvalidInteger() string { return "A valid integer is required." }

func MsgInvalidList() string { return "Expected a list of items." }

func MsgInvalidObject() string { return "Invalid data. Expected a dictionary." }

func MsgMinLength(n int) string {
	return fmt.Sprintf("Ensure this field has at least %d characters.", n)
}

func MsgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func MsgMinValue(limit any) string {
	return fmt.Sprintf("Ensure this value is greater than or equal to %v.", limit)
}

func MsgMaxValue(limit any) string {
	return fmt.Sprintf("Ensure this value is less than or equal to %v.", limit)
}

func MsgMaxDigits(n int) string {
	return fmt.Sprintf("Ensure that there are no more than %d digits in total.", n)
}

func MsgMaxDecimalPlaces(n int) string {
	return fmt.Sprintf("Ensure that there are no more than %d decimal places.", n)
}

func MsgMaxWholeDigits(n int) string {
	return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", n)
}

// RequiredText reports an absent field as required and otherwise applies Text.
func RequiredText(errs *Errors, field string, value *string, minLen, maxLen int) {
	if value == nil {
		errs.Add(field, CodeRequired, MsgRequired())
		return
	}
	Text(errs, field, *value, minLen, maxLen)
}

// Text checks a required string field for blankness and length bounds. A zero bound is ignored.
func Text(errs *Errors, field, value string, minLen, maxLen int) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		errs.Add(field, CodeBlank, MsgBlank())
		return
	}
	n := len([]rune(trimmed))
	if minLen > 0 && n < minLen {
		errs.Add(field, CodeMinLength, MsgMinLength(minLen))
	}
	if maxLen > 0 && n > maxLen {
		errs.Add(field, CodeMaxLength, MsgMaxLength(maxLen))
	}
}
