package services

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrForbidden hides whether the resource exists from non-members
	ErrForbidden          = errors.New("you do not have access to this resource")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries human-readable messages shown next to the form
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// NewValidationError builds a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// AsValidationError extracts a validation error from the chain
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// notFound maps a missing row to ErrNotFound and wraps anything else
func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}
