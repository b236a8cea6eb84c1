// Package galaxy holds the generated world: the lane network, the stars and
// bodies placed on it, and who has claimed what.
package galaxy

import (
	"fmt"
	"slices"

	"starlane/internal/geom"
	"starlane/internal/graph"
)

const (
	// AUScale converts astronomical units to galactic units.
	AUScale = 0.1
	// SystemRadiusAU is the radius of every star system in AU.
	SystemRadiusAU = 7.0
	// SystemRadius is the radius of a star system in galactic units; transit
	// points sit on this boundary.
	SystemRadius = SystemRadiusAU * AUScale
)

type (
	EmpireID uint16
	StarID   uint32
	BodyID   uint32
)

// Star occupies one enabled node of the lane network.
type Star struct {
	ID     StarID
	Node   graph.NodeID
	Name   string
	Mass   float64
	Bodies []BodyID
}

// Empire is a colonizing faction.
type Empire struct {
	ID   EmpireID
	Name string
	Home StarID
}

// Claim records which empire owns a node and since when.
type Claim struct {
	Owner EmpireID
	Tick  uint64
}

// Galaxy is the shared world state read by navigation and colonization and
// mutated only by the simulation between phases.
type Galaxy struct {
	Universe *graph.Universe
	Stars    []Star
	Bodies   []Body
	Empires  []Empire

	claims   []Claim
	claimed  []bool
	colonies map[BodyID]*Colony
}

// New wraps a built lane network with no stars placed yet.
func New(u *graph.Universe) *Galaxy {
	return &Galaxy{
		Universe: u,
		claims:   make([]Claim, u.NodeCount()),
		claimed:  make([]bool, u.NodeCount()),
		colonies: make(map[BodyID]*Colony),
	}
}

// AddStar places a star on node n and links it into the lane network.
func (g *Galaxy) AddStar(n graph.NodeID, name string, mass float64) StarID {
	if _, taken := g.Universe.Star(n); taken {
		panic(fmt.Sprintf("galaxy: node %d already hosts a star", n))
	}
	id := StarID(len(g.Stars))
	g.Stars = append(g.Stars, Star{ID: id, Node: n, Name: name, Mass: mass})
	g.Universe.SetStar(n, graph.StarHandle(id))
	return id
}

// StarAt returns the star on node n.
func (g *Galaxy) StarAt(n graph.NodeID) (*Star, bool) {
	h, ok := g.Universe.Star(n)
	if !ok {
		return nil, false
	}
	return &g.Stars[h], true
}

// Star returns the star with the given id.
func (g *Galaxy) Star(id StarID) (*Star, bool) {
	if int(id) >= len(g.Stars) {
		return nil, false
	}
	return &g.Stars[id], true
}

// AddEmpire registers an empire and returns its id.
func (g *Galaxy) AddEmpire(name string, home StarID) EmpireID {
	id := EmpireID(len(g.Empires))
	g.Empires = append(g.Empires, Empire{ID: id, Name: name, Home: home})
	return id
}

// Empire returns the empire with the given id.
func (g *Galaxy) Empire(id EmpireID) (*Empire, bool) {
	if int(id) >= len(g.Empires) {
		return nil, false
	}
	return &g.Empires[id], true
}

// SystemRadius returns the radius of the system at node n.
func (g *Galaxy) SystemRadius(graph.NodeID) float64 {
	return SystemRadius
}

// NodePos returns the galactic position of node n.
func (g *Galaxy) NodePos(n graph.NodeID) geom.Vec3 {
	return g.Universe.Pos(n)
}

// StarNodes returns the nodes hosting stars, in node order.
func (g *Galaxy) StarNodes() []graph.NodeID {
	nodes := make([]graph.NodeID, 0, len(g.Stars))
	for _, s := range g.Stars {
		nodes = append(nodes, s.Node)
	}
	slices.Sort(nodes)
	return nodes
}
