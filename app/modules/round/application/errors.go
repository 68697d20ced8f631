package roundservice

import (
	"errors"
	"fmt"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")

	// ErrInvalidStateTransition is the domain sentinel, re-exported for callers
	// that only import the service.
	ErrInvalidStateTransition = rounddomain.ErrInvalidStateTransition
)

// InvalidStateTransitionError is returned when a lifecycle guard fails.
type InvalidStateTransitionError = rounddomain.InvalidStateTransitionError

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

func conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}
