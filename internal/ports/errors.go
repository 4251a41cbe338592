package ports

import (
	"context"
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while wiring and running
// modules.
var (
	// ErrModuleNotFound indicates that a referenced module does not exist.
	ErrModuleNotFound = errors.New("module not found")

	// ErrPortOutOfRange indicates that a port index is outside the module's
	// declared ports.
	ErrPortOutOfRange = errors.New("port index out of range")

	// ErrPortInUse indicates that an input port is already connected.
	ErrPortInUse = errors.New("input port already connected")

	// ErrUnknownModuleType indicates that no factory exists for a type.
	ErrUnknownModuleType = errors.New("unknown module type")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ModuleError represents a failure of a module operation while a network
// is being run.
type ModuleError struct {
	// Module is the instance name of the failing module.
	Module string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for ModuleError.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("module error: module=%s, operation=%s, err=%v", e.Module, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModuleError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the failure was caused by a deadline and the
// run may succeed when repeated with more time.
// Structural failures and explicit cancellation are not retryable.
func (e *ModuleError) IsRetryable() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// NewModuleError creates a new ModuleError with the given details.
func NewModuleError(module, operation string, err error) *ModuleError {
	return &ModuleError{
		Module:    module,
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
