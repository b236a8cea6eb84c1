package graph

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlane/internal/geom"
)

// jitteredGrid returns a w*h grid with spacing 10 and up to ±3 of jitter.
func jitteredGrid(w, h int, seed uint64) []geom.Vec2 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]geom.Vec2, 0, w*h)
	for y := range h {
		for x := range w {
			pts = append(pts, geom.Vec2{
				X: float64(x)*10 + (rng.Float64()*6 - 3),
				Y: float64(y)*10 + (rng.Float64()*6 - 3),
			})
		}
	}
	return pts
}

func connectedFrom(u *Universe, n NodeID) Distances {
	return u.Pathfinder().Dijkstra([]NodeID{n})
}

func TestBuild_TooFewPoints(t *testing.T) {
	_, _, err := Build([]geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, DefaultBuildParams(), rand.New(rand.NewPCG(1, 1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestBuild_Collinear(t *testing.T) {
	pts := []geom.Vec2{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	_, _, err := Build(pts, DefaultBuildParams(), rand.New(rand.NewPCG(1, 1)))
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestBuild_EnabledNodesConnected(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 4} {
		u, stats, err := Build(jitteredGrid(16, 16, seed), DefaultBuildParams(), rand.New(rand.NewPCG(seed, 99)))
		require.NoError(t, err)
		assert.Equal(t, 256, u.NodeCount())
		assert.Equal(t, 256, stats.Points)

		enabled := u.EnabledNodes()
		require.NotEmpty(t, enabled)
		assert.Equal(t, len(enabled), stats.Enabled)
		assert.Equal(t, u.EdgeCount(), stats.Lanes)

		dist := connectedFrom(u, enabled[0])
		for _, n := range enabled {
			_, ok := dist.At(n)
			assert.True(t, ok, "seed %d: node %d unreachable", seed, n)
		}
	}
}

func TestBuild_PreservesNodeOrder(t *testing.T) {
	pts := jitteredGrid(10, 10, 5)
	u, _, err := Build(pts, DefaultBuildParams(), rand.New(rand.NewPCG(5, 5)))
	require.NoError(t, err)
	for i, p := range pts {
		assert.Equal(t, geom.Plane(p), u.Pos(NodeID(i)))
	}
}

func TestBuild_HullNodesAreVoid(t *testing.T) {
	pts := jitteredGrid(12, 12, 3)
	u, stats, err := Build(pts, DefaultBuildParams(), rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)

	// Extreme points always lie on the convex hull.
	var minX, maxX, minY, maxY int
	for i, p := range pts {
		if p.X < pts[minX].X {
			minX = i
		}
		if p.X > pts[maxX].X {
			maxX = i
		}
		if p.Y < pts[minY].Y {
			minY = i
		}
		if p.Y > pts[maxY].Y {
			maxY = i
		}
	}
	for _, n := range []int{minX, maxX, minY, maxY} {
		assert.False(t, u.Enabled(NodeID(n)), "hull node %d", n)
	}
	assert.Positive(t, stats.HullCleared)
}

func TestBuild_RandomPruningSparsifies(t *testing.T) {
	noPrune := BuildParams{LengthFactor: 1e9, RemovalRate: 0, MaxDetourHops: 12}
	dense, denseStats, err := Build(jitteredGrid(14, 14, 9), noPrune, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	assert.Zero(t, denseStats.RandomRemoved)
	assert.Zero(t, denseStats.LongRemoved)

	sparse, stats, err := Build(jitteredGrid(14, 14, 9), DefaultBuildParams(), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	assert.Positive(t, stats.RandomRemoved)
	assert.Less(t, sparse.EdgeCount(), dense.EdgeCount())

	// Pruning never disconnects a pair that was connected before.
	assert.Equal(t, dense.EnabledNodes(), sparse.EnabledNodes())
	enabled := sparse.EnabledNodes()
	dist := connectedFrom(sparse, enabled[0])
	for _, n := range enabled {
		_, ok := dist.At(n)
		assert.True(t, ok, "node %d disconnected by pruning", n)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	pts := jitteredGrid(12, 12, 11)
	a, _, err := Build(pts, DefaultBuildParams(), rand.New(rand.NewPCG(4, 4)))
	require.NoError(t, err)
	b, _, err := Build(pts, DefaultBuildParams(), rand.New(rand.NewPCG(4, 4)))
	require.NoError(t, err)
	assert.Equal(t, a.LiveLanes(), b.LiveLanes())
}

func TestPruneLongLanes_KeepsBridges(t *testing.T) {
	// Triangle 0-1-2 plus a long bridge 2-3 that has no detour.
	u := NewUniverse([]geom.Vec3{{X: 0}, {X: 1}, {X: 0.5, Z: 1}, {X: 50}})
	u.AddLane(0, 1)
	u.AddLane(1, 2)
	u.AddLane(0, 2)
	bridge := u.AddLane(2, 3)

	removed := pruneLongLanes(u, 1.0)
	assert.Zero(t, removed)
	assert.False(t, u.Removed(bridge))
}

func TestPruneRandom_RespectsDetourBound(t *testing.T) {
	// A 5-cycle: every lane has a 4-hop detour.
	pos := make([]geom.Vec3, 5)
	for i := range pos {
		pos[i] = geom.Vec3{X: float64(i)}
	}
	u := NewUniverse(pos)
	for i := range 5 {
		u.AddLane(NodeID(i), NodeID((i+1)%5))
	}

	removed := pruneRandom(u, BuildParams{RemovalRate: 1, MaxDetourHops: 4}, rand.New(rand.NewPCG(1, 1)))
	assert.Zero(t, removed)

	removed = pruneRandom(u, BuildParams{RemovalRate: 1, MaxDetourHops: 5}, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 4, u.EdgeCount())
}
