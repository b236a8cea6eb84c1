package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlane/internal/geom"
)

// line builds nodes at x = 0, 1, 2, ... joined in sequence.
func line(n int) *Universe {
	pos := make([]geom.Vec3, n)
	for i := range pos {
		pos[i] = geom.Vec3{X: float64(i)}
	}
	u := NewUniverse(pos)
	for i := 0; i+1 < n; i++ {
		u.AddLane(NodeID(i), NodeID(i+1))
	}
	return u
}

func TestLaneLength_RoundsUp(t *testing.T) {
	assert.Equal(t, 10000, LaneLength(1))
	assert.Equal(t, 15001, LaneLength(1.50001))
	assert.Equal(t, 0, LaneLength(0))
}

func TestAddLane_ScalesDistance(t *testing.T) {
	u := NewUniverse([]geom.Vec3{{}, {X: 3, Z: 4}})
	e := u.AddLane(0, 1)
	assert.Equal(t, 50000, u.Edge(e).Length)
	assert.Equal(t, 1, u.EdgeCount())
	assert.True(t, u.IsNeighbor(0, 1))
	assert.True(t, u.IsNeighbor(1, 0))
	assert.Equal(t, NodeID(1), u.Other(e, 0))
	assert.Equal(t, NodeID(0), u.Other(e, 1))
}

func TestRemoveLane_KeepsIdsStable(t *testing.T) {
	u := line(4)
	e01, _ := u.FindLane(0, 1)
	e12, _ := u.FindLane(1, 2)
	e23, _ := u.FindLane(2, 3)

	u.RemoveLane(e12)
	u.RemoveLane(e12)

	assert.Equal(t, 2, u.EdgeCount())
	assert.Equal(t, 3, u.EdgeCapacity())
	assert.True(t, u.Removed(e12))
	assert.False(t, u.IsNeighbor(1, 2))
	assert.Equal(t, []EdgeID{e01, e23}, u.LiveLanes())
	assert.Equal(t, NodeID(3), u.Other(e23, 2))
}

func TestClearNode_LeavesVoidVertex(t *testing.T) {
	u := line(3)
	u.ClearNode(1)

	assert.Equal(t, 3, u.NodeCount())
	assert.Equal(t, 0, u.EdgeCount())
	assert.False(t, u.Enabled(1))
	assert.Empty(t, u.EnabledNodes())
	assert.Equal(t, geom.Vec3{X: 1}, u.Pos(1))
}

func TestEnabledNodes(t *testing.T) {
	u := NewUniverse(make([]geom.Vec3, 5))
	u.AddLaneWithLength(1, 3, 7)
	assert.Equal(t, []NodeID{1, 3}, u.EnabledNodes())
	assert.Equal(t, 1, u.Degree(3))
	assert.Equal(t, 0, u.Degree(0))
}

func TestStar(t *testing.T) {
	u := line(2)
	_, ok := u.Star(0)
	assert.False(t, ok)

	u.SetStar(0, 42)
	h, ok := u.Star(0)
	require.True(t, ok)
	assert.Equal(t, StarHandle(42), h)
}

func TestAddLane_Panics(t *testing.T) {
	u := line(2)
	assert.Panics(t, func() { u.AddLane(0, 5) })
	assert.Panics(t, func() { u.AddLane(1, 1) })
}
