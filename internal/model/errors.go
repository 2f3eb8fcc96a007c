package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEventNotFound is returned when the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventAlreadyExists is returned when an event with the same name exists.
	ErrEventAlreadyExists = errors.New("event with this name already exists")
	// ErrEventCapacityExceeded is returned when an event has no remaining capacity.
	ErrEventCapacityExceeded = errors.New("event is at full capacity")
	// ErrAttendeeAlreadyRegistered is returned when the same email registers twice
	// for one event.
	ErrAttendeeAlreadyRegistered = errors.New("email already registered for this event")
	// ErrRegistrationFailed is returned when the atomic registration transaction
	// aborts; it always wraps the underlying cause.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrStorageUnavailable is returned on connectivity or timeout failures
	// against the store. It is the only error class callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports one or more invalid input fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
