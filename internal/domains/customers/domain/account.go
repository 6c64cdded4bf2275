package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agizo/agizo-api/internal/shared/validation"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 9

// HashCost is the bcrypt cost used for new accounts. Tests lower it.
var HashCost = bcrypt.DefaultCost

var ErrPasswordHash = errors.New("failed to hash password")

// Account is the login identity a customer profile hangs off.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount validates the credentials and hashes the password.
// Violations are reported with the given field names so callers keep their own wire vocabulary.
func NewAccount(emailField, email, passwordField, password string) (*Account, error) {
	var errs validation.Errors
	normalized := ValidateEmail(&errs, emailField, email)
	if password == "" {
		errs.Add(passwordField, validation.CodeBlank, validation.MsgBlank())
	} else if len([]rune(password)) < MinPasswordLength {
		errs.Add(passwordField, validation.CodeMinLength, validation.MsgMinLength(MinPasswordLength))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return nil, errors.Join(ErrPasswordHash, err)
	}
	return &Account{Email: normalized, PasswordHash: string(hash)}, nil
}

// CheckPassword compares password against the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if a == nil || a.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail records a violation on field when email is not a bare address and returns it normalized.
func ValidateEmail(errs *validation.Errors, field, email string) string {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		errs.Add(field, validation.CodeBlank, validation.MsgBlank())
		return normalized
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		errs.Add(field, validation.CodeInvalid, "Enter a valid email address.")
	}
	return normalized
}
