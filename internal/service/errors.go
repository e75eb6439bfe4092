package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested book is not in the catalog.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when the LLM call fails.
	ErrExternalService = errors.New("external service error")
	// ErrAssistantDisabled is returned when no LLM endpoint is configured.
	ErrAssistantDisabled = errors.New("assistant is not configured")
)

// ValidationError reports a request field the assistant cannot use.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func invalidField(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// externalError marks err as an LLM failure during op.
func externalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternalService, err)
}
