// Package network provides the in-memory module manager that owns module
// instances and their wiring. The manager is the consumer query the
// scheduler runs against.
package network

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.ModuleManager = (*Manager)(nil)

// Common manager errors.
var (
	// ErrDuplicateModule is returned when a module name is already taken.
	ErrDuplicateModule = errors.New("module name already in use")

	// ErrNilModule is returned when a nil module is added.
	ErrNilModule = errors.New("module cannot be nil")

	// ErrDuplicateConnection is returned when the exact same wire exists.
	ErrDuplicateConnection = errors.New("connection already exists")

	// ErrNotConnected is returned when disconnecting a free input port.
	ErrNotConnected = errors.New("input port is not connected")
)

// Manager is a thread-safe in-memory network of modules.
// Reads may run concurrently with each other; callers must not mutate the
// network while a schedule is being computed over it.
type Manager struct {
	mu sync.RWMutex

	// order holds modules in insertion order.
	order []ports.ExecutableModule
	// byName indexes modules by instance name.
	byName map[string]ports.ExecutableModule
	// connections holds every wire in connection order.
	connections []ports.Connection
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{byName: make(map[string]ports.ExecutableModule)}
}

// AddModule adds m to the network. Module names must be unique.
func (mgr *Manager) AddModule(m ports.ExecutableModule) error {
	if m == nil {
		return ErrNilModule
	}
	name := m.InstanceName()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, exists := mgr.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}
	mgr.byName[name] = m
	mgr.order = append(mgr.order, m)
	return nil
}

// RemoveModule removes the named module and every wire touching it.
func (mgr *Manager) RemoveModule(name string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, ok := mgr.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrModuleNotFound, name)
	}

	delete(mgr.byName, name)
	for i, candidate := range mgr.order {
		if candidate == m {
			mgr.order = append(mgr.order[:i], mgr.order[i+1:]...)
			break
		}
	}

	kept := mgr.connections[:0]
	for _, c := range mgr.connections {
		if c.Producer == domain.Module(m) || c.Consumer == domain.Module(m) {
			continue
		}
		kept = append(kept, c)
	}
	mgr.connections = kept
	return nil
}

// Connect wires output outIdx of producer to input inIdx of consumer.
// An input port accepts at most one wire. A module may be wired to itself;
// scheduling reports such a network as cyclic.
func (mgr *Manager) Connect(producer string, outIdx int, consumer string, inIdx int) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p, ok := mgr.byName[producer]
	if !ok {
		return fmt.Errorf("%w: producer %s", ports.ErrModuleNotFound, producer)
	}
	c, ok := mgr.byName[consumer]
	if !ok {
		return fmt.Errorf("%w: consumer %s", ports.ErrModuleNotFound, consumer)
	}
	if outIdx < 0 || outIdx >= p.OutputCount() {
		return fmt.Errorf("%w: %s has %d outputs, got %d", ports.ErrPortOutOfRange, producer, p.OutputCount(), outIdx)
	}
	if inIdx < 0 || inIdx >= c.InputCount() {
		return fmt.Errorf("%w: %s has %d inputs, got %d", ports.ErrPortOutOfRange, consumer, c.InputCount(), inIdx)
	}

	for _, existing := range mgr.connections {
		if existing.Consumer != domain.Module(c) || existing.InputIdx != inIdx {
			continue
		}
		if existing.Producer == domain.Module(p) && existing.OutputIdx == outIdx {
			return fmt.Errorf("%w: %s:%d -> %s:%d", ErrDuplicateConnection, producer, outIdx, consumer, inIdx)
		}
		return fmt.Errorf("%w: %s:%d is fed by %s:%d",
			ports.ErrPortInUse, consumer, inIdx, domain.ModuleName(existing.Producer), existing.OutputIdx)
	}

	mgr.connections = append(mgr.connections, ports.Connection{
		Producer:  p,
		OutputIdx: outIdx,
		Consumer:  c,
		InputIdx:  inIdx,
	})
	return nil
}

// Disconnect removes the wire feeding input inIdx of consumer.
func (mgr *Manager) Disconnect(consumer string, inIdx int) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	c, ok := mgr.byName[consumer]
	if !ok {
		return fmt.Errorf("%w: consumer %s", ports.ErrModuleNotFound, consumer)
	}
	for i, existing := range mgr.connections {
		if existing.Consumer == domain.Module(c) && existing.InputIdx == inIdx {
			mgr.connections = append(mgr.connections[:i], mgr.connections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s:%d", ErrNotConnected, consumer, inIdx)
}

// ConsumerModules returns the distinct modules fed by any output of m, in
// connection order.
func (mgr *Manager) ConsumerModules(m domain.Module) []domain.Module {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	var out []domain.Module
	for _, c := range mgr.connections {
		if c.Producer != m {
			continue
		}
		seen := false
		for _, existing := range out {
			if existing == c.Consumer {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c.Consumer)
		}
	}
	return out
}

// ProducersOf returns the wires feeding inputs of m, in connection order.
func (mgr *Manager) ProducersOf(m domain.Module) []ports.Connection {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	var out []ports.Connection
	for _, c := range mgr.connections {
		if c.Consumer == m {
			out = append(out, c)
		}
	}
	return out
}

// Modules returns every module in insertion order.
func (mgr *Manager) Modules() []domain.Module {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	out := make([]domain.Module, len(mgr.order))
	for i, m := range mgr.order {
		out[i] = m
	}
	return out
}

// Module looks up a module by name.
func (mgr *Manager) Module(name string) (ports.ExecutableModule, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	m, ok := mgr.byName[name]
	return m, ok
}

// Connections returns a copy of every wire in connection order.
func (mgr *Manager) Connections() []ports.Connection {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	out := make([]ports.Connection, len(mgr.connections))
	copy(out, mgr.connections)
	return out
}

// Len returns the number of modules.
func (mgr *Manager) Len() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.order)
}
