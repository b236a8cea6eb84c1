package galaxy

import (
	"cmp"
	"slices"

	"starlane/internal/graph"
)

// Colony is a settled body.
type Colony struct {
	Body        BodyID
	Owner       EmpireID
	Population  int64
	FoundedTick uint64
	// Crew accumulates toward the next colony ship launch.
	Crew int64
}

// Owner returns the empire claiming node n.
func (g *Galaxy) Owner(n graph.NodeID) (EmpireID, bool) {
	if !g.claimed[n] {
		return 0, false
	}
	return g.claims[n].Owner, true
}

// ClaimOf returns the full claim record for node n.
func (g *Galaxy) ClaimOf(n graph.NodeID) (Claim, bool) {
	return g.claims[n], g.claimed[n]
}

// Claim gives node n to owner at tick. It reports false, leaving the claim
// untouched, when another empire already holds the node. Reclaiming an owned
// node keeps the original tick.
func (g *Galaxy) Claim(n graph.NodeID, owner EmpireID, tick uint64) bool {
	if g.claimed[n] {
		return g.claims[n].Owner == owner
	}
	g.claims[n] = Claim{Owner: owner, Tick: tick}
	g.claimed[n] = true
	return true
}

// Release clears the claim on node n.
func (g *Galaxy) Release(n graph.NodeID) {
	g.claimed[n] = false
	g.claims[n] = Claim{}
}

// OwnedNodes returns every node owner claims, in node order.
func (g *Galaxy) OwnedNodes(owner EmpireID) []graph.NodeID {
	var out []graph.NodeID
	for n, ok := range g.claimed {
		if ok && g.claims[n].Owner == owner {
			out = append(out, graph.NodeID(n))
		}
	}
	return out
}

// ClaimCounts returns the number of claimed nodes per empire.
func (g *Galaxy) ClaimCounts() map[EmpireID]int {
	out := make(map[EmpireID]int, len(g.Empires))
	for n, ok := range g.claimed {
		if ok {
			out[g.claims[n].Owner]++
		}
	}
	return out
}

// Colony returns the colony on body b.
func (g *Galaxy) Colony(b BodyID) (*Colony, bool) {
	c, ok := g.colonies[b]
	return c, ok
}

// Settle founds a colony on b or reinforces the existing one. The second
// result reports whether a new colony was created.
func (g *Galaxy) Settle(b BodyID, owner EmpireID, colonists int64, tick uint64) (*Colony, bool) {
	if c, ok := g.colonies[b]; ok {
		c.Population += colonists
		return c, false
	}
	c := &Colony{Body: b, Owner: owner, Population: colonists, FoundedTick: tick}
	g.colonies[b] = c
	return c, true
}

// Colonies returns every colony ordered by body id.
func (g *Galaxy) Colonies() []*Colony {
	out := make([]*Colony, 0, len(g.colonies))
	for _, c := range g.colonies {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Colony) int { return cmp.Compare(a.Body, b.Body) })
	return out
}
