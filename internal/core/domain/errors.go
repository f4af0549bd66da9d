package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAmbiguousLookup    = errors.New("more than one account shares this email")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrPartialFailure     = errors.New("some writes failed")
	ErrNotFound           = errors.New("not found")
)

// FieldError is a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports bad user input. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PartialFailureError is returned when a batch write succeeded for some
// records only. Records already written are not rolled back.
type PartialFailureError struct {
	Written []string
	Failed  map[string]error
}

func (e *PartialFailureError) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("%s: %d written, %d failed (%s)",
		ErrPartialFailure, len(e.Written), len(ids), strings.Join(ids, ", "))
}

func (e *PartialFailureError) Unwrap() error { return ErrPartialFailure }

// FailedIDs returns the failed record keys in sorted order.
func (e *PartialFailureError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StoreError marks err as a backend failure while keeping the cause.
// ErrNotFound passes through unchanged.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
