package ports

import (
	"github.com/ahrav/go-netsched/internal/domain"
)

// ConsumerQuery is the graph query adapter the scheduler calls to discover
// the modules wired to consume the outputs of a module.
// Implementations must be pure queries over a fixed graph snapshot. The
// scheduler calls ConsumerModules repeatedly during a single computation and
// never caches the results, so the graph must not change while a schedule is
// being computed.
type ConsumerQuery interface {
	// ConsumerModules returns the modules that consume at least one output
	// of m. The result must not contain duplicates and must be stable for a
	// given snapshot.
	ConsumerModules(m domain.Module) []domain.Module
}

// Scheduler computes execution orders for networks of scheduling nodes.
// Implementations are stateless across calls: the same snapshot always
// yields the same cycle verdict and an order satisfying the same
// producer-before-consumer constraints.
type Scheduler interface {
	// DetectCycles reports whether following consumer edges from any of
	// the given nodes can revisit a node already on the current path.
	// DetectCycles never returns an error; an empty input is acyclic.
	DetectCycles(nodes []domain.SchedulingNode) bool

	// Schedule returns every input node exactly once, ordered so that each
	// producer precedes its direct and transitive consumers.
	// Schedule returns a *domain.CyclesDetectedError, and no partial order,
	// when the nodes contain a cycle.
	Schedule(nodes []domain.SchedulingNode) (domain.Schedule, error)
}

// Connection is a single wire from a producer output port to a consumer
// input port.
type Connection struct {
	// Producer is the module whose output feeds the wire.
	Producer domain.Module
	// OutputIdx is the producer output port index.
	OutputIdx int
	// Consumer is the module that receives the value.
	Consumer domain.Module
	// InputIdx is the consumer input port index.
	InputIdx int
}

// ModuleManager owns module instances and their wiring.
// It is the registry side of the scheduler: the scheduler only sees it
// through ConsumerQuery, while drivers and renderers use the full view.
type ModuleManager interface {
	ConsumerQuery

	// Modules returns every module in insertion order.
	Modules() []domain.Module

	// Module looks up a module by instance name.
	Module(name string) (ExecutableModule, bool)

	// Connections returns a copy of all wires in connection order.
	Connections() []Connection

	// ProducersOf returns the wires that feed inputs of m.
	ProducersOf(m domain.Module) []Connection
}
