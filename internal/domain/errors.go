package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a malformed or missing request field.
	ErrValidation = errors.New("validation failed")
	// ErrProviderError signals an AI provider call failure (network, quota, malformed response).
	ErrProviderError = errors.New("ai provider error")
	// ErrProviderUnavailable signals that no AI provider is configured.
	ErrProviderUnavailable = errors.New("ai provider not configured")
	// ErrCapabilityNotSupported signals that the configured provider lacks a capability.
	ErrCapabilityNotSupported = errors.New("capability not supported by provider")
	// ErrBudgetExceeded signals that the provider token budget for the period is spent.
	ErrBudgetExceeded = errors.New("provider token budget exceeded")
	// ErrCorpusUnavailable signals that the corpus could not be loaded or is empty when required.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
