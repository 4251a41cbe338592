package testutils

import (
	"math/rand"
	"time"
)

// GenerateRandomDAG builds an acyclic FakeGraph with size modules.
// Edges only ever point from a lower to a higher creation index, each with
// probability edgeProb, so the result can never contain a cycle. Roughly
// viewRatio of the modules are display modules; display modules only ever
// appear as consumers.
// The seed parameter controls randomization - use time.Now().UnixNano() for
// non-deterministic generation or a fixed value for reproducible tests.
func GenerateRandomDAG(size int, edgeProb, viewRatio float64, seed int64) *FakeGraph {
	rng := rand.New(rand.NewSource(seed))
	g := NewFakeGraph()

	for i := range size {
		if rng.Float64() < viewRatio {
			g.View(ModuleName(i))
		} else {
			g.Module(ModuleName(i))
		}
	}

	modules := g.Modules()
	for i, producer := range modules {
		if fm, ok := producer.(*FakeModule); ok && fm.View {
			continue
		}
		for j := i + 1; j < len(modules); j++ {
			if rng.Float64() < edgeProb {
				g.Connect(producer, modules[j])
			}
		}
	}

	return g
}

// GenerateRandomDAGDefault creates a random DAG with a time-based seed.
func GenerateRandomDAGDefault(size int) *FakeGraph {
	return GenerateRandomDAG(size, 0.2, 0.1, time.Now().UnixNano())
}

// AddBackEdge closes a cycle in g by wiring the last ordinary module back
// to the first ordinary module that reaches it. It returns false when no
// such pair exists.
func AddBackEdge(g *FakeGraph) bool {
	modules := g.Modules()
	for i := len(modules) - 1; i >= 0; i-- {
		last, ok := modules[i].(*FakeModule)
		if !ok || last.View {
			continue
		}
		for _, first := range modules[:i] {
			if g.Reaches(first, last) {
				g.Connect(last, first)
				return true
			}
		}
	}
	return false
}
