package graph

import (
	"fmt"
	"math"

	"starlane/internal/geom"
)

// IntegerScale converts galactic distances to integer lane lengths so that all
// path arithmetic is integer and platform independent.
const IntegerScale = 10000

// NodeID indexes a star slot in the Universe. Ids match input point order.
type NodeID uint32

// EdgeID indexes a lane. Ids stay valid after other lanes are removed.
type EdgeID uint32

// StarHandle is an opaque reference to the star occupying a node.
type StarHandle uint32

// Node is a star slot. A node without a star is a void vertex kept only to
// keep the triangulation geometrically complete.
type Node struct {
	Pos     geom.Vec3
	star    StarHandle
	hasStar bool
}

// Edge is an undirected lane between A and B.
type Edge struct {
	A, B    NodeID
	Length  int
	removed bool
}

// Universe holds star slots connected by lanes, stored as index arenas.
type Universe struct {
	nodes []Node
	edges []Edge
	// adj maps nodeID -> ids of live lanes touching it
	adj       [][]EdgeID
	liveEdges int
}

// NewUniverse creates a Universe with one node per position and no lanes.
func NewUniverse(positions []geom.Vec3) *Universe {
	u := &Universe{
		nodes: make([]Node, len(positions)),
		adj:   make([][]EdgeID, len(positions)),
	}
	for i, p := range positions {
		u.nodes[i] = Node{Pos: p}
	}
	return u
}

// LaneLength returns the integer length of a lane spanning dist.
// Rounding up keeps lane lengths at or above the straight-line heuristic.
func LaneLength(dist float64) int {
	return int(math.Ceil(dist * IntegerScale))
}

// AddLane adds an undirected lane with its length derived from node positions.
func (u *Universe) AddLane(a, b NodeID) EdgeID {
	return u.AddLaneWithLength(a, b, LaneLength(u.Distance(a, b)))
}

// AddLaneWithLength adds an undirected lane with an explicit length.
// Lengths shorter than the scaled straight-line distance break A* optimality.
func (u *Universe) AddLaneWithLength(a, b NodeID, length int) EdgeID {
	u.checkNode(a)
	u.checkNode(b)
	if a == b {
		panic(fmt.Sprintf("graph: self-lane on node %d", a))
	}
	id := EdgeID(len(u.edges))
	u.edges = append(u.edges, Edge{A: a, B: b, Length: length})
	u.adj[a] = append(u.adj[a], id)
	u.adj[b] = append(u.adj[b], id)
	u.liveEdges++
	return id
}

// RemoveLane detaches a lane from both endpoints. Removing twice is a no-op.
func (u *Universe) RemoveLane(e EdgeID) {
	edge := &u.edges[e]
	if edge.removed {
		return
	}
	edge.removed = true
	u.adj[edge.A] = detach(u.adj[edge.A], e)
	u.adj[edge.B] = detach(u.adj[edge.B], e)
	u.liveEdges--
}

func detach(list []EdgeID, e EdgeID) []EdgeID {
	for i, x := range list {
		if x == e {
			last := len(list) - 1
			list[i] = list[last]
			return list[:last]
		}
	}
	return list
}

// ClearNode removes every lane touching n. The node itself stays as a void vertex.
func (u *Universe) ClearNode(n NodeID) {
	for len(u.adj[n]) > 0 {
		u.RemoveLane(u.adj[n][0])
	}
}

// FindLane returns the live lane joining a and b.
func (u *Universe) FindLane(a, b NodeID) (EdgeID, bool) {
	for _, e := range u.adj[a] {
		if u.Other(e, a) == b {
			return e, true
		}
	}
	return 0, false
}

// Lanes returns the live lanes touching n. The slice must not be modified.
func (u *Universe) Lanes(n NodeID) []EdgeID {
	return u.adj[n]
}

// Neighbors returns the nodes directly linked to n.
func (u *Universe) Neighbors(n NodeID) []NodeID {
	out := make([]NodeID, 0, len(u.adj[n]))
	for _, e := range u.adj[n] {
		out = append(out, u.Other(e, n))
	}
	return out
}

// IsNeighbor reports whether a live lane joins a and b.
func (u *Universe) IsNeighbor(a, b NodeID) bool {
	_, ok := u.FindLane(a, b)
	return ok
}

// Other returns the endpoint of e opposite to n.
func (u *Universe) Other(e EdgeID, n NodeID) NodeID {
	edge := u.edges[e]
	if edge.A == n {
		return edge.B
	}
	return edge.A
}

// Edge returns the lane record for e, including removed lanes.
func (u *Universe) Edge(e EdgeID) Edge {
	return u.edges[e]
}

// Removed reports whether e has been pruned.
func (u *Universe) Removed(e EdgeID) bool {
	return u.edges[e].removed
}

// LiveLanes returns the ids of all lanes not yet removed, in id order.
func (u *Universe) LiveLanes() []EdgeID {
	out := make([]EdgeID, 0, u.liveEdges)
	for i := range u.edges {
		if !u.edges[i].removed {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// Degree returns the number of live lanes touching n.
func (u *Universe) Degree(n NodeID) int {
	return len(u.adj[n])
}

// Enabled reports whether n takes part in the travel network (degree > 0).
func (u *Universe) Enabled(n NodeID) bool {
	return len(u.adj[n]) > 0
}

// EnabledNodes returns every node with at least one lane, in id order.
func (u *Universe) EnabledNodes() []NodeID {
	var out []NodeID
	for i := range u.nodes {
		if len(u.adj[i]) > 0 {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// NodeCount returns the number of nodes, void vertices included.
func (u *Universe) NodeCount() int { return len(u.nodes) }

// EdgeCount returns the number of live lanes.
func (u *Universe) EdgeCount() int { return u.liveEdges }

// EdgeCapacity returns the number of lane ids ever issued.
func (u *Universe) EdgeCapacity() int { return len(u.edges) }

// Pos returns the world position of n.
func (u *Universe) Pos(n NodeID) geom.Vec3 {
	return u.nodes[n].Pos
}

// Distance returns the straight-line distance between two nodes.
func (u *Universe) Distance(a, b NodeID) float64 {
	return u.nodes[a].Pos.Distance(u.nodes[b].Pos)
}

// SetStar attaches a star handle to n.
func (u *Universe) SetStar(n NodeID, h StarHandle) {
	u.nodes[n].star = h
	u.nodes[n].hasStar = true
}

// Star returns the star occupying n, if any.
func (u *Universe) Star(n NodeID) (StarHandle, bool) {
	node := u.nodes[n]
	return node.star, node.hasStar
}

func (u *Universe) checkNode(n NodeID) {
	if int(n) >= len(u.nodes) {
		panic(fmt.Sprintf("graph: node %d out of range (capacity %d)", n, len(u.nodes)))
	}
}
