package application

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.Scheduler = (*Scheduler)(nil)

// CycleStrategy selects the traversal used for cycle detection.
// Both strategies return the same verdict for every graph.
type CycleStrategy int

const (
	// PathCopy runs a depth-first search from every node where each branch
	// carries its own copy of the visited path. It is the default and is
	// exponential only on pathological re-convergent graphs.
	PathCopy CycleStrategy = iota
	// ThreeColor runs a single white/gray/black depth-first search and is
	// linear in the number of nodes and edges.
	ThreeColor
)

// String returns the flag spelling of the strategy.
func (s CycleStrategy) String() string {
	switch s {
	case PathCopy:
		return "path-copy"
	case ThreeColor:
		return "three-color"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseCycleStrategy converts a flag value into a CycleStrategy.
func ParseCycleStrategy(s string) (CycleStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "path-copy", "pathcopy":
		return PathCopy, nil
	case "three-color", "threecolor", "colour", "color":
		return ThreeColor, nil
	default:
		return PathCopy, fmt.Errorf("unknown cycle strategy %q: use path-copy or three-color", s)
	}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithCycleStrategy selects the cycle detection traversal.
func WithCycleStrategy(strategy CycleStrategy) SchedulerOption {
	return func(s *Scheduler) { s.strategy = strategy }
}

// Scheduler computes execution orders for module networks.
// A Scheduler holds no state beyond its consumer query and options, so a
// single instance can serve any number of independent computations. Each
// computation wraps modules afresh and never caches consumer queries, which
// means the graph behind the query must not change while a call is running.
// Module implementations must be comparable (pointer types in practice):
// node equivalence compares module references with ==.
type Scheduler struct {
	// consumers answers producer -> consumer queries for the current graph
	// snapshot.
	consumers ports.ConsumerQuery
	// strategy selects the cycle detection traversal.
	strategy CycleStrategy
}

// NewScheduler creates a scheduler that discovers wiring through q.
// q must not be nil.
func NewScheduler(q ports.ConsumerQuery, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{consumers: q, strategy: PathCopy}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy returns the configured cycle detection strategy.
func (s *Scheduler) Strategy() CycleStrategy { return s.strategy }

// SchedulingNodes expands raw modules into scheduling nodes.
// Ordinary modules yield one node. Display modules yield two adjacent
// nodes, the final segment followed by the initial segment. Input order is
// preserved and nil entries are skipped.
func SchedulingNodes(modules []domain.Module) []domain.SchedulingNode {
	nodes := make([]domain.SchedulingNode, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			continue
		}
		if domain.IsView(m) {
			nodes = append(nodes,
				domain.NewViewNode(m, domain.SegmentFinal),
				domain.NewViewNode(m, domain.SegmentInitial),
			)
			continue
		}
		nodes = append(nodes, domain.NewNode(m))
	}
	return nodes
}

// ConsumersOf returns the consumers of n as freshly wrapped nodes.
// The final segment of a display module has no consumers by definition and
// is answered without consulting the graph. A consumer that is a display
// module is represented by its final segment.
func (s *Scheduler) ConsumersOf(n domain.SchedulingNode) []domain.SchedulingNode {
	if n.IsFinalView() {
		return nil
	}

	raw := s.consumers.ConsumerModules(n.Module)
	out := make([]domain.SchedulingNode, 0, len(raw))
	for _, c := range raw {
		if domain.IsView(c) {
			out = append(out, domain.NewViewNode(c, domain.SegmentFinal))
		} else {
			out = append(out, domain.NewNode(c))
		}
	}
	return out
}

// DetectCycles reports whether a cycle is reachable from any of nodes.
// A node that consumes its own output is a cycle of length one.
func (s *Scheduler) DetectCycles(nodes []domain.SchedulingNode) bool {
	return s.FindCycle(nodes) != nil
}

// FindCycle returns the first cycle reachable from nodes as a closed path
// whose first and last elements are the same node, or nil if there is none.
func (s *Scheduler) FindCycle(nodes []domain.SchedulingNode) []domain.SchedulingNode {
	if s.strategy == ThreeColor {
		return s.findCycleThreeColor(nodes)
	}
	return s.findCyclePathCopy(nodes)
}

// findCyclePathCopy searches every start node independently. Each stack
// frame owns its path, so nodes reachable along several independent paths
// are never mistaken for a cycle.
func (s *Scheduler) findCyclePathCopy(nodes []domain.SchedulingNode) []domain.SchedulingNode {
	type frame struct {
		node domain.SchedulingNode
		path []domain.SchedulingNode
	}

	for _, start := range nodes {
		stack := []frame{{node: start, path: []domain.SchedulingNode{start}}}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			consumers := s.ConsumersOf(f.node)
			for _, c := range consumers {
				if idx := domain.IndexOfNode(f.path, c); idx >= 0 {
					return closePath(f.path[idx:], c)
				}
			}

			// Push in reverse so consumers are explored in query order.
			for i := len(consumers) - 1; i >= 0; i-- {
				path := make([]domain.SchedulingNode, len(f.path), len(f.path)+1)
				copy(path, f.path)
				stack = append(stack, frame{node: consumers[i], path: append(path, consumers[i])})
			}
		}
	}

	return nil
}

// findCycleThreeColor runs one iterative white/gray/black traversal over
// all start nodes. Gray nodes are exactly the ones on the current stack.
func (s *Scheduler) findCycleThreeColor(nodes []domain.SchedulingNode) []domain.SchedulingNode {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		node      domain.SchedulingNode
		consumers []domain.SchedulingNode
		next      int
	}

	// Keys are node values, so lookups use the same three-field equality
	// as SchedulingNode.Matches.
	color := make(map[domain.SchedulingNode]int, len(nodes))

	for _, start := range nodes {
		if color[start] != white {
			continue
		}

		color[start] = gray
		stack := []*frame{{node: start, consumers: s.ConsumersOf(start)}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next == len(top.consumers) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			c := top.consumers[top.next]
			top.next++

			switch color[c] {
			case gray:
				path := make([]domain.SchedulingNode, 0, len(stack))
				for _, f := range stack {
					path = append(path, f.node)
				}
				idx := domain.IndexOfNode(path, c)
				return closePath(path[idx:], c)
			case white:
				color[c] = gray
				stack = append(stack, &frame{node: c, consumers: s.ConsumersOf(c)})
			}
		}
	}

	return nil
}

// closePath copies path and appends end, producing an owned closed cycle.
func closePath(path []domain.SchedulingNode, end domain.SchedulingNode) []domain.SchedulingNode {
	cycle := make([]domain.SchedulingNode, 0, len(path)+1)
	cycle = append(cycle, path...)
	return append(cycle, end)
}

// isFinalVertex reports whether n has no consumer left in working.
func (s *Scheduler) isFinalVertex(n domain.SchedulingNode, working []domain.SchedulingNode) bool {
	for _, c := range s.ConsumersOf(n) {
		if domain.ContainsNode(working, c) {
			return false
		}
	}
	return true
}

// TopoSort orders nodes so that producers precede their consumers by
// repeatedly peeling off the nodes with no consumers left in the working
// set and reversing the peel order. Nodes peeled in the same pass keep
// their input order before the reversal.
// TopoSort expects an acyclic input. If a pass finds no final vertex it
// returns a *domain.CyclesDetectedError instead of looping forever.
func (s *Scheduler) TopoSort(nodes []domain.SchedulingNode) (domain.Schedule, error) {
	working := slices.Clone(nodes)
	result := make(domain.Schedule, 0, len(nodes))

	for len(working) > 0 {
		finals := make([]domain.SchedulingNode, 0, len(working))
		rest := make([]domain.SchedulingNode, 0, len(working))
		for _, n := range working {
			if s.isFinalVertex(n, working) {
				finals = append(finals, n)
			} else {
				rest = append(rest, n)
			}
		}

		if len(finals) == 0 {
			return nil, domain.NewCyclesDetectedError(s.FindCycle(working))
		}

		result = append(result, finals...)
		working = rest
	}

	slices.Reverse(result)
	return result, nil
}

// Schedule checks nodes for cycles and, only if there are none, returns the
// topological execution order.
// Schedule returns a *domain.CyclesDetectedError carrying the offending
// path when a cycle exists; no partial schedule is ever returned.
func (s *Scheduler) Schedule(nodes []domain.SchedulingNode) (domain.Schedule, error) {
	if cycle := s.FindCycle(nodes); cycle != nil {
		return nil, domain.NewCyclesDetectedError(cycle)
	}
	return s.TopoSort(nodes)
}

// ScheduleModules expands modules into scheduling nodes and schedules them.
func (s *Scheduler) ScheduleModules(modules []domain.Module) (domain.Schedule, error) {
	return s.Schedule(SchedulingNodes(modules))
}
