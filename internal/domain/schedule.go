package domain

// Schedule is a total order over scheduling nodes in which every producer
// appears before each of its direct and transitive consumers.
type Schedule []SchedulingNode

// IndexOf returns the position of the node matching n, or -1.
func (s Schedule) IndexOf(n SchedulingNode) int {
	return IndexOfNode(s, n)
}

// Contains reports whether the schedule holds a node matching n.
func (s Schedule) Contains(n SchedulingNode) bool {
	return s.IndexOf(n) >= 0
}

// Modules returns the distinct modules of the schedule in order of first
// appearance. A display module contributes a single entry.
func (s Schedule) Modules() []Module {
	out := make([]Module, 0, len(s))
	for _, n := range s {
		seen := false
		for _, m := range out {
			if m == n.Module {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, n.Module)
		}
	}
	return out
}

// Names returns the rendered name of every node in order.
func (s Schedule) Names() []string {
	names := make([]string, len(s))
	for i, n := range s {
		names[i] = n.String()
	}
	return names
}
