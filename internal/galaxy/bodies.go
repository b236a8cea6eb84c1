package galaxy

import (
	"math"
	"math/rand/v2"

	"starlane/internal/geom"
	"starlane/internal/graph"
)

// Body is a colonizable planet on a circular orbit around its star.
type Body struct {
	ID   BodyID
	Star StarID
	Node graph.NodeID
	Name string
	// OrbitRadius is in AU.
	OrbitRadius float64
	// OrbitalPeriod and OrbitalDate are in ticks.
	OrbitalPeriod uint32
	OrbitalDate   uint32
	// Radius is in Jupiter radii.
	Radius float64

	local geom.Vec3
}

// AddBody places a body around star s and computes its initial position.
func (g *Galaxy) AddBody(s StarID, name string, orbitRadius float64, period, date uint32, radius float64) BodyID {
	star := &g.Stars[s]
	id := BodyID(len(g.Bodies))
	b := Body{
		ID:            id,
		Star:          s,
		Node:          star.Node,
		Name:          name,
		OrbitRadius:   orbitRadius,
		OrbitalPeriod: max(period, 1),
		OrbitalDate:   date,
		Radius:        radius,
	}
	b.OrbitalDate %= b.OrbitalPeriod
	b.updatePosition()
	g.Bodies = append(g.Bodies, b)
	star.Bodies = append(star.Bodies, id)
	return id
}

// randomBody rolls orbit parameters the way generated systems use them.
func (g *Galaxy) randomBody(s StarID, name string, rng *rand.Rand) BodyID {
	orbit := 1 + rng.Float64()*2
	period := uint32((2 + rng.Float64()) * orbit * 200)
	date := uint32(rng.IntN(int(max(period, 1))))
	return g.AddBody(s, name, orbit, period, date, 0.1+rng.Float64()*0.9)
}

// Body returns the body with the given id.
func (g *Galaxy) Body(id BodyID) (*Body, bool) {
	if int(id) >= len(g.Bodies) {
		return nil, false
	}
	return &g.Bodies[id], true
}

// LocalPos returns the body's position relative to its star.
func (b *Body) LocalPos() geom.Vec3 {
	return b.local
}

// VisualRadius is the radius used when ranking home worlds.
func (b *Body) VisualRadius() float64 {
	return b.Radius * 0.00465 * AUScale * 20
}

func (b *Body) updatePosition() {
	angle := float64(b.OrbitalDate) / float64(b.OrbitalPeriod) * 2 * math.Pi
	b.local = geom.Vec3{X: math.Cos(angle), Z: math.Sin(angle)}.Scale(b.OrbitRadius * AUScale)
}

// AdvanceOrbits moves every body one tick along its orbit.
func (g *Galaxy) AdvanceOrbits() {
	for i := range g.Bodies {
		b := &g.Bodies[i]
		b.OrbitalDate++
		if b.OrbitalDate >= b.OrbitalPeriod {
			b.OrbitalDate = 0
		}
		b.updatePosition()
	}
}
