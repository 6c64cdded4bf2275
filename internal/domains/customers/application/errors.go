package application

import (
	"errors"
	"fmt"

	"github.com/agizo/agizo-api/internal/shared/validation"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid customer input")
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, validation.ErrInvalid) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
