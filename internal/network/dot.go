package network

import (
	"fmt"
	"strconv"

	gographviz "github.com/awalterschulze/gographviz"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

const dotGraphName = "network"

// RenderDOT renders the wiring of mm as a Graphviz digraph.
// Display modules are drawn as 3D boxes. When sched is non-empty every
// module label carries its schedule positions, "#1" for ordinary modules
// and "#final/#initial" for display modules.
func RenderDOT(mm ports.ModuleManager, sched domain.Schedule) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", fmt.Errorf("dot render error: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("dot render error: %w", err)
	}
	if err := g.AddAttr(dotGraphName, "rankdir", "LR"); err != nil {
		return "", fmt.Errorf("dot render error: %w", err)
	}

	for _, m := range mm.Modules() {
		attrs := map[string]string{
			"label": strconv.Quote(nodeLabel(m, sched)),
			"shape": "box",
		}
		if domain.IsView(m) {
			attrs["shape"] = "box3d"
		}
		if err := g.AddNode(dotGraphName, strconv.Quote(m.InstanceName()), attrs); err != nil {
			return "", fmt.Errorf("dot render error: node %s: %w", m.InstanceName(), err)
		}
	}

	for _, c := range mm.Connections() {
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%d->%d", c.OutputIdx, c.InputIdx)),
		}
		err := g.AddEdge(
			strconv.Quote(c.Producer.InstanceName()),
			strconv.Quote(c.Consumer.InstanceName()),
			true, attrs,
		)
		if err != nil {
			return "", fmt.Errorf("dot render error: edge %s -> %s: %w",
				c.Producer.InstanceName(), c.Consumer.InstanceName(), err)
		}
	}

	return g.String(), nil
}

func nodeLabel(m domain.Module, sched domain.Schedule) string {
	name := m.InstanceName()
	if len(sched) == 0 {
		return name
	}
	if !domain.IsView(m) {
		if pos := sched.IndexOf(domain.NewNode(m)); pos >= 0 {
			return fmt.Sprintf("%s #%d", name, pos+1)
		}
		return name
	}

	final := sched.IndexOf(domain.NewViewNode(m, domain.SegmentFinal))
	initial := sched.IndexOf(domain.NewViewNode(m, domain.SegmentInitial))
	if final < 0 || initial < 0 {
		return name
	}
	return fmt.Sprintf("%s #%d/#%d", name, final+1, initial+1)
}
