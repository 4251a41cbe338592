package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur during scheduling operations.
var (
	// ErrCyclesDetected indicates that the network contains at least one
	// cycle and therefore has no valid execution order.
	ErrCyclesDetected = errors.New("cycles detected in network, unable to schedule")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CyclesDetectedError is returned when a schedule is requested for a cyclic
// network. It never carries a partial schedule.
type CyclesDetectedError struct {
	// Cycle is the closed path that was found, starting and ending at the
	// same node. It is empty when the detector only produced a verdict.
	Cycle []SchedulingNode
}

// Error implements the error interface for CyclesDetectedError.
func (e *CyclesDetectedError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCyclesDetected.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrCyclesDetected.Error(), e.Path())
}

// Unwrap returns ErrCyclesDetected so callers can use errors.Is.
func (e *CyclesDetectedError) Unwrap() error { return ErrCyclesDetected }

// Path renders the cycle as "a -> b -> a".
func (e *CyclesDetectedError) Path() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = n.String()
	}
	return strings.Join(parts, " -> ")
}

// Modules returns the distinct modules implicated in the cycle.
func (e *CyclesDetectedError) Modules() []Module {
	return Schedule(e.Cycle).Modules()
}

// NewCyclesDetectedError creates a CyclesDetectedError for the given path.
func NewCyclesDetectedError(cycle []SchedulingNode) *CyclesDetectedError {
	return &CyclesDetectedError{Cycle: cycle}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.AddError(fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
