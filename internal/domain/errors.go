package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
	ErrUpstreamFailure = errors.New("upstream failure")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Reasons reported through ValidationError.Reason.
const (
	ReasonMissing      = "missing"
	ReasonInvalid      = "invalid"
	ReasonInconsistent = "inconsistent"
)

func missing(field string) error {
	return &ValidationError{Field: field, Reason: ReasonMissing}
}

func invalid(field string) error {
	return &ValidationError{Field: field, Reason: ReasonInvalid}
}
