package nav

import (
	"fmt"

	"starlane/internal/geom"
	"starlane/internal/graph"
)

// Position is where a fleet physically is: parked inside a system at a local
// offset, or in transit along a lane.
type Position struct {
	// Node is the occupied node, or the node departed from while in transit.
	Node graph.NodeID
	// Offset is relative to Node's world position. Only meaningful at a node.
	Offset geom.Vec3

	InTransit bool
	To        graph.NodeID
	// Progress and Total are in lane length units.
	Progress int
	Total    int
}

// AtNode returns a position parked in the system at n.
func AtNode(n graph.NodeID, offset geom.Vec3) Position {
	return Position{Node: n, Offset: offset}
}

// Transit returns a position that has just left from toward to.
func Transit(from, to graph.NodeID, total int) Position {
	return Position{Node: from, InTransit: true, To: to, Total: total}
}

// IsAtNode reports whether the fleet is parked in a system.
func (p Position) IsAtNode() bool { return !p.InTransit }

// WorldPos returns the galactic position. In transit it interpolates between
// the two nodes by progress.
func (p Position) WorldPos(u *graph.Universe) geom.Vec3 {
	if !p.InTransit {
		return u.Pos(p.Node).Add(p.Offset)
	}
	t := 0.0
	if p.Total > 0 {
		t = float64(p.Progress) / float64(p.Total)
	}
	return u.Pos(p.Node).Lerp(u.Pos(p.To), t)
}

func (p Position) String() string {
	if p.InTransit {
		return fmt.Sprintf("transit(%d->%d %d/%d)", p.Node, p.To, p.Progress, p.Total)
	}
	return fmt.Sprintf("at(%d)", p.Node)
}

// TransitPoint is the point on the boundary of node's system facing toward,
// as an offset from node. Fleets leave and arrive through it.
func TransitPoint(u *graph.Universe, node, toward graph.NodeID, radius float64) geom.Vec3 {
	return u.Pos(toward).Sub(u.Pos(node)).NormalizeOrZero().Scale(radius)
}
