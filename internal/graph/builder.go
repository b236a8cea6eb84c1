package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/fogleman/delaunay"

	"starlane/internal/geom"
)

// ErrDegenerate is returned when the point set cannot be triangulated.
var ErrDegenerate = errors.New("degenerate point set")

// BuildParams tunes lane pruning.
type BuildParams struct {
	// LengthFactor scales the mean lane length into the long-lane threshold.
	LengthFactor float64
	// RemovalRate is the fraction of surviving lanes the random pass tries to remove.
	RemovalRate float64
	// MaxDetourHops bounds the hop count of the detour that replaces a randomly removed lane.
	MaxDetourHops int
}

// DefaultBuildParams returns the pruning parameters used for generated galaxies.
func DefaultBuildParams() BuildParams {
	return BuildParams{
		LengthFactor:  1.5,
		RemovalRate:   0.6,
		MaxDetourHops: 12,
	}
}

// BuildStats describes what each construction stage did.
type BuildStats struct {
	Points        int
	Triangles     int
	Candidates    int
	HullCleared   int
	Fragments     int
	LongRemoved   int
	RandomRemoved int
	Lanes         int
	Enabled       int
}

// Build triangulates points into lanes and prunes them without ever
// disconnecting two enabled nodes. Node ids follow input order.
func Build(points []geom.Vec2, params BuildParams, rng *rand.Rand) (*Universe, BuildStats, error) {
	stats := BuildStats{Points: len(points)}
	if len(points) < 3 {
		return nil, stats, fmt.Errorf("%w: need at least 3 points, got %d", ErrDegenerate, len(points))
	}

	dpoints := make([]delaunay.Point, len(points))
	positions := make([]geom.Vec3, len(points))
	for i, p := range points {
		dpoints[i] = delaunay.Point{X: p.X, Y: p.Y}
		positions[i] = geom.Plane(p)
	}
	tri, err := delaunay.Triangulate(dpoints)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if len(tri.Triangles) == 0 {
		return nil, stats, fmt.Errorf("%w: no triangles", ErrDegenerate)
	}
	stats.Triangles = len(tri.Triangles) / 3

	u := NewUniverse(positions)
	var hull []NodeID
	for i, twin := range tri.Halfedges {
		a := NodeID(tri.Triangles[i])
		if twin < 0 {
			hull = append(hull, a)
			continue
		}
		b := NodeID(tri.Triangles[nextHalfedge(i)])
		if a < b {
			u.AddLane(a, b)
		}
	}
	stats.Candidates = u.EdgeCount()

	stats.HullCleared = pruneHull(u, hull)
	stats.Fragments = keepLargestComponent(u)
	stats.LongRemoved = pruneLongLanes(u, params.LengthFactor)
	stats.RandomRemoved = pruneRandom(u, params, rng)

	stats.Lanes = u.EdgeCount()
	stats.Enabled = len(u.EnabledNodes())
	return u, stats, nil
}

func nextHalfedge(i int) int {
	if i%3 == 2 {
		return i - 2
	}
	return i + 1
}

// pruneHull clears every hull node and every node adjacent to one.
func pruneHull(u *Universe, hull []NodeID) int {
	clearSet := make(map[NodeID]struct{}, len(hull)*3)
	for _, h := range hull {
		clearSet[h] = struct{}{}
		for _, n := range u.Neighbors(h) {
			clearSet[n] = struct{}{}
		}
	}
	for n := range clearSet {
		u.ClearNode(n)
	}
	return len(clearSet)
}

// keepLargestComponent clears enabled nodes cut off from the main network by
// hull pruning and returns how many were cleared.
func keepLargestComponent(u *Universe) int {
	comp := make([]int, u.NodeCount())
	for i := range comp {
		comp[i] = -1
	}
	var sizes []int
	for _, start := range u.EnabledNodes() {
		if comp[start] >= 0 {
			continue
		}
		id := len(sizes)
		size := 0
		stack := []NodeID{start}
		comp[start] = id
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, n := range u.Neighbors(cur) {
				if comp[n] < 0 {
					comp[n] = id
					stack = append(stack, n)
				}
			}
		}
		sizes = append(sizes, size)
	}
	if len(sizes) <= 1 {
		return 0
	}
	largest := 0
	for i, s := range sizes {
		if s > sizes[largest] {
			largest = i
		}
	}
	cleared := 0
	for n, c := range comp {
		if c >= 0 && c != largest {
			u.ClearNode(NodeID(n))
			cleared++
		}
	}
	return cleared
}

// pruneLongLanes removes lanes longer than factor times the mean length when
// a detour exists.
func pruneLongLanes(u *Universe, factor float64) int {
	lanes := u.LiveLanes()
	if len(lanes) == 0 {
		return 0
	}
	var sum float64
	for _, e := range lanes {
		sum += float64(u.Edge(e).Length)
	}
	threshold := sum / float64(len(lanes)) * factor
	limit := threshold * threshold

	pf := u.Pathfinder()
	removed := 0
	for _, e := range lanes {
		edge := u.Edge(e)
		l := float64(edge.Length)
		if l*l <= limit {
			continue
		}
		if pf.FindPathWithoutDirectEdge(edge.A, edge.B) != nil {
			u.RemoveLane(e)
			removed++
		}
	}
	return removed
}

// pruneRandom removes randomly drawn lanes whose endpoints stay joined by a
// detour of fewer than MaxDetourHops lanes.
func pruneRandom(u *Universe, params BuildParams, rng *rand.Rand) int {
	candidates := u.LiveLanes()
	target := int(float64(len(candidates)) * params.RemovalRate)
	pf := u.Pathfinder()
	removed := 0
	for removed < target && len(candidates) > 0 {
		i := rng.IntN(len(candidates))
		e := candidates[i]
		last := len(candidates) - 1
		candidates[i] = candidates[last]
		candidates = candidates[:last]

		edge := u.Edge(e)
		detour := pf.FindPathWithoutDirectEdge(edge.A, edge.B)
		if detour == nil || detour.Hops() >= params.MaxDetourHops {
			continue
		}
		u.RemoveLane(e)
		removed++
	}
	return removed
}
