package engine

import (
	"starlane/internal/galaxy"
	"starlane/internal/graph"
)

// rebuildMasks recomputes every empire's navigation mask from current claims:
// an empire may enter its own and unclaimed systems but not foreign ones.
func (s *Simulation) rebuildMasks() {
	for _, m := range s.masks {
		m.Reset()
	}
	n := s.Galaxy.Universe.NodeCount()
	for i := 0; i < n; i++ {
		node := graph.NodeID(i)
		owner, ok := s.Galaxy.Owner(node)
		if !ok {
			continue
		}
		for e, m := range s.masks {
			if galaxy.EmpireID(e) == owner {
				m.Own(node)
			} else {
				m.Block(node)
			}
		}
	}
}
