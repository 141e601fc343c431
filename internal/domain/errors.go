package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or empty caller input.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition marks an operation invoked on an empty conversation.
	ErrPrecondition = errors.New("precondition failed")
	// ErrCollaborator marks a failed model or storage call.
	ErrCollaborator = errors.New("collaborator failed")
	// ErrMalformedResponse is matched by every MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed model response")
)

// MalformedResponseError is returned when model output cannot be coerced into
// an analysis object. Raw keeps the original text for the logs.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %v", e.Err)
	}
	return "malformed model response"
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedResponse, e.Err}
	}
	return []error{ErrMalformedResponse}
}

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Preconditionf returns an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Collaborator wraps a model or storage failure with ErrCollaborator while
// keeping the original error reachable through errors.Is/As.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrCollaborator, err)
}
