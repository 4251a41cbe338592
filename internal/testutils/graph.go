// Package testutils provides utilities for testing, including fake module
// graphs and random network generators. These components are intended for
// internal use within the project's test suites and are not part of the
// public API.
package testutils

import (
	"fmt"

	"github.com/ahrav/go-netsched/internal/domain"
)

// FakeModule is a bare domain.Module used by scheduler tests.
// Its identity is its pointer, so two FakeModules with the same name are
// still distinct modules.
type FakeModule struct {
	// Name is the instance name reported by InstanceName.
	Name string
	// View marks the module as a terminal/display module.
	View bool
}

// InstanceName implements domain.Module.
func (m *FakeModule) InstanceName() string { return m.Name }

// IsView implements domain.Viewer.
func (m *FakeModule) IsView() bool { return m.View }

// FakeGraph is an in-memory consumer query built from explicit edges.
// It deliberately answers queries for modules that are not part of a
// scheduling selection, mirroring a real module manager.
type FakeGraph struct {
	modules   []domain.Module
	consumers map[domain.Module][]domain.Module
	// Queries counts ConsumerModules calls.
	Queries int
}

// NewFakeGraph creates an empty FakeGraph.
func NewFakeGraph() *FakeGraph {
	return &FakeGraph{consumers: make(map[domain.Module][]domain.Module)}
}

// Module adds an ordinary module with the given name.
func (g *FakeGraph) Module(name string) *FakeModule {
	m := &FakeModule{Name: name}
	g.modules = append(g.modules, m)
	return m
}

// View adds a display module with the given name.
func (g *FakeGraph) View(name string) *FakeModule {
	m := &FakeModule{Name: name, View: true}
	g.modules = append(g.modules, m)
	return m
}

// Connect wires producer to consumer. Repeated wires between the same pair
// are collapsed, as a module manager reports distinct consumers.
func (g *FakeGraph) Connect(producer, consumer domain.Module) *FakeGraph {
	for _, existing := range g.consumers[producer] {
		if existing == consumer {
			return g
		}
	}
	g.consumers[producer] = append(g.consumers[producer], consumer)
	return g
}

// Chain wires each module to the next one.
func (g *FakeGraph) Chain(modules ...domain.Module) *FakeGraph {
	for i := 0; i+1 < len(modules); i++ {
		g.Connect(modules[i], modules[i+1])
	}
	return g
}

// Modules returns every module in creation order.
func (g *FakeGraph) Modules() []domain.Module {
	out := make([]domain.Module, len(g.modules))
	copy(out, g.modules)
	return out
}

// ConsumerModules implements ports.ConsumerQuery.
func (g *FakeGraph) ConsumerModules(m domain.Module) []domain.Module {
	g.Queries++
	return g.consumers[m]
}

// Reaches reports whether to is a direct or transitive consumer of from at
// module level.
func (g *FakeGraph) Reaches(from, to domain.Module) bool {
	seen := map[domain.Module]bool{}
	stack := append([]domain.Module(nil), g.consumers[from]...)
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m == to {
			return true
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		stack = append(stack, g.consumers[m]...)
	}
	return false
}

// Names returns the instance names of modules.
func Names(modules []domain.Module) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.InstanceName()
	}
	return out
}

// NodeNames returns the rendered names of nodes.
func NodeNames(nodes []domain.SchedulingNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.String()
	}
	return out
}

// ModuleName returns a stable name for the i-th generated module.
func ModuleName(i int) string {
	return fmt.Sprintf("m%02d", i)
}
