package service

import (
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrItemNotFound           = domain.ErrLineNotFound
	ErrConcurrentModification = errors.New("cart is being modified concurrently, please retry")
)

// ValidationError reports bad client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
