package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-netsched/infrastructure/modules"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.ModuleRegistry = (*DefaultModuleRegistry)(nil)

// maxSuggestionDistance is the largest edit distance for which an unknown
// module type gets a "did you mean" hint.
const maxSuggestionDistance = 3

// DefaultModuleRegistry implements the ModuleRegistry interface providing
// a factory for creating modules based on type and parameters.
// Type names are matched case-insensitively.
type DefaultModuleRegistry struct {
	// factories maps case-folded type names to their factory functions.
	factories map[string]ports.ModuleFactory
	// names maps case-folded type names to the spelling they were
	// registered with.
	names map[string]string
	// mu protects concurrent access to the factory maps.
	mu sync.RWMutex
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *DefaultModuleRegistry {
	return &DefaultModuleRegistry{
		factories: make(map[string]ports.ModuleFactory),
		names:     make(map[string]string),
	}
}

// NewDefaultModuleRegistry creates a registry with the built-in module
// kinds pre-registered: constant, scale, sum, passthrough and viewer.
func NewDefaultModuleRegistry() *DefaultModuleRegistry {
	registry := NewModuleRegistry()
	registry.registerBuiltinFactories()
	return registry
}

func (r *DefaultModuleRegistry) registerBuiltinFactories() {
	builtins := map[string]ports.ModuleFactory{
		"constant": func(name string, params map[string]any) (ports.ExecutableModule, error) {
			return modules.CreateConstantModule(name, params)
		},
		"scale": func(name string, params map[string]any) (ports.ExecutableModule, error) {
			return modules.CreateScaleModule(name, params)
		},
		"sum": func(name string, params map[string]any) (ports.ExecutableModule, error) {
			return modules.CreateSumModule(name, params)
		},
		"passthrough": func(name string, params map[string]any) (ports.ExecutableModule, error) {
			return modules.CreatePassthroughModule(name, params)
		},
		"viewer": func(name string, params map[string]any) (ports.ExecutableModule, error) {
			return modules.CreateViewerModule(name, params)
		},
	}

	for moduleType, factory := range builtins {
		key := foldTypeName(moduleType)
		r.factories[key] = factory
		r.names[key] = moduleType
	}
}

// CreateModule creates a new module instance of the given type.
// Unknown types produce an error wrapping ports.ErrUnknownModuleType that
// suggests the closest registered type when one is near enough.
func (r *DefaultModuleRegistry) CreateModule(
	moduleType string,
	name string,
	params map[string]any,
) (ports.ExecutableModule, error) {
	r.mu.RLock()
	factory, exists := r.factories[foldTypeName(moduleType)]
	r.mu.RUnlock()

	if !exists {
		if suggestion := r.suggest(moduleType); suggestion != "" {
			return nil, fmt.Errorf("%w: %s (did you mean %q?)", ports.ErrUnknownModuleType, moduleType, suggestion)
		}
		return nil, fmt.Errorf("%w: %s", ports.ErrUnknownModuleType, moduleType)
	}

	if name == "" {
		return nil, fmt.Errorf("module name cannot be empty")
	}

	if params == nil {
		params = make(map[string]any)
	}

	m, err := factory(name, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create module %s of type %s: %w", name, moduleType, err)
	}

	return m, nil
}

// RegisterModuleFactory registers a new factory function for a module type,
// replacing any factory registered under the same case-folded name.
func (r *DefaultModuleRegistry) RegisterModuleFactory(
	moduleType string,
	factory ports.ModuleFactory,
) error {
	if moduleType == "" {
		return fmt.Errorf("module type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := foldTypeName(moduleType)
	r.factories[key] = factory
	r.names[key] = moduleType
	return nil
}

// GetSupportedTypes returns all registered module types, sorted.
func (r *DefaultModuleRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.names))
	for _, moduleType := range r.names {
		types = append(types, moduleType)
	}
	slices.Sort(types)

	return types
}

// suggest returns the registered type closest to moduleType, or "" when
// nothing is within maxSuggestionDistance.
func (r *DefaultModuleRegistry) suggest(moduleType string) string {
	folded := foldTypeName(moduleType)

	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range r.GetSupportedTypes() {
		d := levenshtein.ComputeDistance(folded, foldTypeName(candidate))
		if d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// foldTypeName case-folds a type name. A fresh Caser is used per call since
// Casers carry state.
func foldTypeName(s string) string {
	return cases.Fold().String(s)
}
