package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required leader field is empty.
	ErrMissingField = errors.New("missing required fields")

	// ErrInvalidKind is returned when the registration type is not recognised.
	ErrInvalidKind = errors.New("invalid registration type")

	// ErrInvalidTeamSize is returned when a team has too few or too many members.
	ErrInvalidTeamSize = errors.New("invalid team size")

	// ErrConfiguration is returned when the sink credentials are not configured.
	ErrConfiguration = errors.New("missing Google API environment variables")
)

// FieldError describes a validation failure on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a client error raised by Validate.
type ValidationError struct {
	Err     error
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SinkErrorKind classifies append failures.
type SinkErrorKind int

const (
	SinkUnknown SinkErrorKind = iota
	SinkAuthFailure
	SinkUnavailable
)

func (k SinkErrorKind) String() string {
	switch k {
	case SinkAuthFailure:
		return "auth_failure"
	case SinkUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// SinkError wraps a failed append.
type SinkError struct {
	Kind SinkErrorKind
	Err  error
}

// NewSinkError wraps err with the given kind.
func NewSinkError(kind SinkErrorKind, err error) *SinkError {
	return &SinkError{Kind: kind, Err: err}
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Kind, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
