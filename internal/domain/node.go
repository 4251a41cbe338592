package domain

import "fmt"

// Segment tags the scheduling role of a display module.
// Ordinary modules always carry SegmentNone.
type Segment int

const (
	// SegmentNone is the segment of every ordinary module node.
	SegmentNone Segment = -1
	// SegmentFinal is the display role that consumes upstream output.
	// A final node never has consumers.
	SegmentFinal Segment = 0
	// SegmentInitial is the second scheduling position of a display module.
	SegmentInitial Segment = 1
)

// String returns the lowercase name of the segment.
func (s Segment) String() string {
	switch s {
	case SegmentNone:
		return "none"
	case SegmentFinal:
		return "final"
	case SegmentInitial:
		return "initial"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

// SchedulingNode is the unit actually ordered by the scheduler: a module
// reference plus its role.
// Nodes are built ad hoc during each scheduling computation, so two nodes
// denote the same scheduling position only when Matches reports true.
type SchedulingNode struct {
	// Module is a non-owning reference to the wrapped module.
	Module Module
	// View is true for both nodes of a display module.
	View bool
	// Segment distinguishes the final and initial nodes of a display module.
	Segment Segment
}

// NewNode wraps an ordinary module.
func NewNode(m Module) SchedulingNode {
	return SchedulingNode{Module: m, View: false, Segment: SegmentNone}
}

// NewViewNode wraps a display module in the given segment.
func NewViewNode(m Module, seg Segment) SchedulingNode {
	return SchedulingNode{Module: m, View: true, Segment: seg}
}

// Matches reports whether n and other are equivalent: same module, same view
// flag and same segment.
func (n SchedulingNode) Matches(other SchedulingNode) bool {
	return n.Module == other.Module &&
		n.View == other.View &&
		n.Segment == other.Segment
}

// IsFinalView reports whether n is the final segment of a display module.
func (n SchedulingNode) IsFinalView() bool {
	return n.View && n.Segment == SegmentFinal
}

// String renders the node as "name" or "name[segment]" for display nodes.
func (n SchedulingNode) String() string {
	if !n.View {
		return ModuleName(n.Module)
	}
	return fmt.Sprintf("%s[%s]", ModuleName(n.Module), n.Segment)
}

// ContainsNode reports whether any node in nodes matches n.
func ContainsNode(nodes []SchedulingNode, n SchedulingNode) bool {
	return IndexOfNode(nodes, n) >= 0
}

// IndexOfNode returns the index of the first node in nodes that matches n,
// or -1.
func IndexOfNode(nodes []SchedulingNode, n SchedulingNode) int {
	for i, candidate := range nodes {
		if candidate.Matches(n) {
			return i
		}
	}
	return -1
}
