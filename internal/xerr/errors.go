// Package xerr defines the shared error taxonomy used across modkit's
// components, matching the precondition/validation/verification split in
// spec §7.
package xerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes in spec §7.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrPreconditionFailed = errors.New("precondition not met")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInUse              = errors.New("resource in use")
	ErrDependencyMissing  = errors.New("required dependency missing")
	ErrElevationDenied    = errors.New("elevation request denied or cancelled")
	ErrVerificationFailed = errors.New("post-change verification failed")
)

// PreconditionError reports a failed precondition with enough context to
// render an actionable message (spec §7: "Precondition-missing").
type PreconditionError struct {
	Operation string
	Resource  string
	Details   string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition failed for %s on %s", e.Operation, e.Resource)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }

// NewPrecondition builds a PreconditionError.
func NewPrecondition(operation, resource, details string) *PreconditionError {
	return &PreconditionError{Operation: operation, Resource: resource, Details: details}
}

// ValidationError aggregates one or more field-level validation failures
// (spec §7: "Configuration-invalid").
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// NewValidation builds a ValidationError from one or more messages.
func NewValidation(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

// Outcome is the discriminated result returned by mutating public
// operations across modkit (spec §7: "ok | (err, reason-string)").
type Outcome struct {
	OK     bool
	Reason string
}

// Ok returns a successful Outcome.
func Ok() Outcome { return Outcome{OK: true} }

// Fail returns a failed Outcome with a human-readable reason.
func Fail(reason string) Outcome { return Outcome{OK: false, Reason: reason} }

// Failf returns a failed Outcome with a formatted reason.
func Failf(format string, args ...interface{}) Outcome {
	return Outcome{OK: false, Reason: fmt.Sprintf(format, args...)}
}
