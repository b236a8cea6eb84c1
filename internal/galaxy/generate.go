package galaxy

import (
	"fmt"
	mrand "math/rand"
	"math/rand/v2"

	"github.com/fogleman/poissondisc"

	"starlane/internal/geom"
	"starlane/internal/graph"
	"starlane/internal/logger"
)

// Params describes a galaxy to generate.
type Params struct {
	Radius         float64
	MaxStars       int
	Spacing        float64
	Empires        int
	MaxBodies      int
	HomePopulation int64
	Build          graph.BuildParams
}

// DefaultParams returns the standard galaxy: 1000 star slots spaced 40 apart
// in a disc of radius 500, shared by 10 empires.
func DefaultParams() Params {
	return Params{
		Radius:         500,
		MaxStars:       1000,
		Spacing:        40,
		Empires:        10,
		MaxBodies:      7,
		HomePopulation: 9_000_000_000,
		Build:          graph.DefaultBuildParams(),
	}
}

// Stream ids split one seed into independent generators.
const (
	streamBuild uint64 = iota + 1
	streamSystems
	streamEmpires
)

// SamplePoints places star slots in the galactic disc with at least Spacing
// between any two of them.
func SamplePoints(p Params, seed int64) []geom.Vec2 {
	r := p.Radius
	raw := poissondisc.Sample(-r, -r, r, r, p.Spacing, 30, mrand.New(mrand.NewSource(seed)))
	out := make([]geom.Vec2, 0, min(len(raw), p.MaxStars))
	for _, pt := range raw {
		if len(out) == p.MaxStars {
			break
		}
		if pt.X*pt.X+pt.Y*pt.Y > r*r {
			continue
		}
		out = append(out, geom.Vec2{X: pt.X, Y: pt.Y})
	}
	return out
}

// Generate builds the lane network, fills enabled nodes with star systems and
// places the starting empires.
func Generate(p Params, seed int64) (*Galaxy, graph.BuildStats, error) {
	points := SamplePoints(p, seed)
	u, stats, err := graph.Build(points, p.Build, newRand(seed, streamBuild))
	if err != nil {
		return nil, stats, fmt.Errorf("build lane network: %w", err)
	}

	g := New(u)
	g.populate(p.MaxBodies, newRand(seed, streamSystems))
	homes := g.PlaceEmpires(p.Empires, p.HomePopulation, newRand(seed, streamEmpires))
	if len(homes) < p.Empires {
		logger.Warn("GALAXY", fmt.Sprintf("Placed %d of %d empires, not enough habitable systems", len(homes), p.Empires))
	}
	return g, stats, nil
}

func newRand(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// populate spawns a star with 0..maxBodies bodies on every enabled node.
func (g *Galaxy) populate(maxBodies int, rng *rand.Rand) {
	for _, n := range g.Universe.EnabledNodes() {
		name := fmt.Sprintf("SYS-%04d", n)
		mass := (0.5 + rng.Float64()*3.5) * (0.5 + rng.Float64()*3.5)
		s := g.AddStar(n, name, mass)
		count := rng.IntN(maxBodies + 1)
		for i := range count {
			g.randomBody(s, fmt.Sprintf("%s %c", name, 'b'+i), rng)
		}
	}
}
