// Package domain contains pure, dependency-free domain models and types
// for the network scheduler.
package domain

// Module is an opaque processing or rendering unit that the scheduler orders.
// The scheduler never inspects a module beyond its identity, its name and
// whether it is a display module.
// Identity is the interface value itself, so implementations are expected to
// be pointer types: two distinct module instances never compare equal even
// when they share a name.
type Module interface {
	// InstanceName returns the human-readable name of this module instance.
	// It is used for logging, error messages and rendering only.
	InstanceName() string
}

// Viewer is implemented by modules that can act as terminal/display stages.
// A module is a display module only when it implements Viewer and IsView
// reports true.
type Viewer interface {
	// IsView reports whether the module is a display module whose output is
	// not wired to further module inputs.
	IsView() bool
}

// IsView reports whether m is a terminal/display module.
func IsView(m Module) bool {
	v, ok := m.(Viewer)
	return ok && v.IsView()
}

// ModuleName returns the instance name of m, or "<nil>" for a nil module.
func ModuleName(m Module) string {
	if m == nil {
		return "<nil>"
	}
	return m.InstanceName()
}
