package graph

import "fmt"

// Path is a walk through the Universe. Edges[i] joins Nodes[i] and Nodes[i+1].
type Path struct {
	Nodes []NodeID
	Edges []EdgeID
}

// singleNodePath is the trivial path returned when start == goal.
func singleNodePath(n NodeID) *Path {
	return &Path{Nodes: []NodeID{n}}
}

// Start returns the first node.
func (p *Path) Start() NodeID { return p.Nodes[0] }

// Goal returns the last node.
func (p *Path) Goal() NodeID { return p.Nodes[len(p.Nodes)-1] }

// Hops returns the number of lanes traversed.
func (p *Path) Hops() int { return len(p.Edges) }

// NextHop returns the node after the start, or false for a single-node path.
func (p *Path) NextHop() (NodeID, bool) {
	if len(p.Nodes) < 2 {
		return 0, false
	}
	return p.Nodes[1], true
}

// Reverse returns a new path walking the same lanes in the opposite direction.
func (p *Path) Reverse() *Path {
	out := &Path{
		Nodes: make([]NodeID, len(p.Nodes)),
		Edges: make([]EdgeID, len(p.Edges)),
	}
	for i, n := range p.Nodes {
		out.Nodes[len(p.Nodes)-1-i] = n
	}
	for i, e := range p.Edges {
		out.Edges[len(p.Edges)-1-i] = e
	}
	return out
}

// Cost sums the lane lengths along the path.
func (p *Path) Cost(u *Universe) int {
	total := 0
	for _, e := range p.Edges {
		total += u.Edge(e).Length
	}
	return total
}

// Validate checks that every edge joins its neighbouring nodes.
func (p *Path) Validate(u *Universe) error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("path has no nodes")
	}
	if len(p.Edges) != len(p.Nodes)-1 {
		return fmt.Errorf("path has %d nodes but %d edges", len(p.Nodes), len(p.Edges))
	}
	for i, e := range p.Edges {
		edge := u.Edge(e)
		a, b := p.Nodes[i], p.Nodes[i+1]
		if !(edge.A == a && edge.B == b) && !(edge.A == b && edge.B == a) {
			return fmt.Errorf("edge %d does not join nodes %d and %d", e, a, b)
		}
	}
	return nil
}

func (p *Path) mustBeWellFormed() {
	if len(p.Edges) != len(p.Nodes)-1 {
		panic(fmt.Sprintf("graph: malformed path: %d nodes, %d edges", len(p.Nodes), len(p.Edges)))
	}
}
