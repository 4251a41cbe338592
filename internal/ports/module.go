// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-netsched/internal/domain"
)

// ExecutableModule is a module that a driver can wire and run.
// The scheduler itself only needs domain.Module; the remaining methods are
// used by the network manager and the runner.
type ExecutableModule interface {
	domain.Module

	// InputCount returns the number of input ports.
	InputCount() int

	// OutputCount returns the number of output ports.
	OutputCount() int

	// SetInput stores the value delivered to input port idx.
	// SetInput returns an error if idx is out of range.
	SetInput(idx int, value any) error

	// Output returns the current value of output port idx.
	// Output returns an error if idx is out of range.
	Output(idx int) (any, error)

	// Execute runs the module for the given scheduling segment.
	// Ordinary modules are always executed with domain.SegmentNone; display
	// modules are executed once per segment in schedule order.
	// Execute should respect context cancellation and return promptly.
	//
	// Example:
	//
	//	if err := m.Execute(ctx, node.Segment); err != nil {
	//	    return fmt.Errorf("module %s failed: %w", m.InstanceName(), err)
	//	}
	Execute(ctx context.Context, seg domain.Segment) error
}

// ModuleFactory creates a module instance from its name and decoded
// parameters.
type ModuleFactory func(name string, params map[string]any) (ExecutableModule, error)

// ModuleRegistry creates modules by type name.
type ModuleRegistry interface {
	// CreateModule instantiates a module of the given type.
	// CreateModule returns an error if the type is unknown or the
	// parameters are rejected by the factory.
	CreateModule(moduleType, name string, params map[string]any) (ExecutableModule, error)

	// RegisterModuleFactory registers or replaces the factory for a type.
	RegisterModuleFactory(moduleType string, factory ModuleFactory) error

	// GetSupportedTypes returns all registered type names.
	GetSupportedTypes() []string
}
