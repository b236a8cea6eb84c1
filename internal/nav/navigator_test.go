package nav

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlane/internal/galaxy"
	"starlane/internal/geom"
	"starlane/internal/graph"
)

const radius = 0.7

type fakeWorld struct {
	u       *graph.Universe
	owners  map[graph.NodeID]galaxy.EmpireID
	targets map[TargetID]geom.Vec3
}

func (w *fakeWorld) Universe() *graph.Universe         { return w.u }
func (w *fakeWorld) SystemRadius(graph.NodeID) float64 { return radius }
func (w *fakeWorld) TargetLocalPos(t TargetID) (geom.Vec3, bool) {
	p, ok := w.targets[t]
	return p, ok
}
func (w *fakeWorld) Owner(n graph.NodeID) (galaxy.EmpireID, bool) {
	o, ok := w.owners[n]
	return o, ok
}

// abc is the line A(0)–B(1)–C(2) one unit apart; lanes are 10000 long.
func abc() *fakeWorld {
	u := graph.NewUniverse([]geom.Vec3{{X: 0}, {X: 1}, {X: 2}})
	u.AddLane(0, 1)
	u.AddLane(1, 2)
	return &fakeWorld{
		u:       u,
		owners:  map[graph.NodeID]galaxy.EmpireID{},
		targets: map[TargetID]geom.Vec3{},
	}
}

type fleet struct {
	nav Navigator
	pos Position
}

func (f *fleet) agent(w *fakeWorld, owned ...graph.NodeID) Agent {
	return Agent{Owner: 1, Nav: &f.nav, Pos: &f.pos, Paths: w.u.Pathfinder(), Owned: owned}
}

func stepper(w *fakeWorld) *Stepper {
	return &Stepper{World: w, Log: zerolog.Nop()}
}

func assertIdleAtNode(t *testing.T, f *fleet) {
	t.Helper()
	if f.nav.Action.Kind == ActionIdle {
		require.True(t, f.pos.IsAtNode(), "idle fleet in transit: %s", f.pos)
	}
}

func TestStep_ReachNodeAcrossTwoLanes(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 5000), pos: AtNode(0, geom.Vec3{})}
	f.nav.Push(ReachNode(2))

	// Tick 1: ReachNode(C) expands to Jump(B) under ReachPoint(transit toward B).
	s.Step(f.agent(w))
	assert.Equal(t, ActionMoveTo, f.nav.Action.Kind)
	assert.InDelta(t, radius, f.nav.Action.Point.X, 1e-12)
	require.Len(t, f.nav.Plans, 2)
	assert.Equal(t, Jump(1), f.nav.Plans[1])
	assert.Equal(t, ReachNode(2), f.nav.Plans[0])

	ticks := 1
	for ; ticks < 20; ticks++ {
		assertIdleAtNode(t, f)
		if len(f.nav.Plans) == 0 && f.nav.Action.Kind == ActionIdle {
			break
		}
		r := s.Step(f.agent(w))
		assert.Empty(t, r.Abandoned)
		if r.Arrived && f.pos.Node == 1 {
			// Arrival pops out facing A, then ReachNode(C) re-expands.
			assert.InDelta(t, -radius, f.pos.Offset.X, 1e-12)
			require.Len(t, f.nav.Plans, 2)
			assert.Equal(t, Jump(2), f.nav.Plans[1])
		}
	}
	// 1 expand, 1 approach, 2 transit, 2 approach (1.4 at speed 1), 2 transit.
	assert.Equal(t, 8, ticks)
	assert.True(t, f.pos.IsAtNode())
	assert.Equal(t, graph.NodeID(2), f.pos.Node)
	assert.InDelta(t, -radius, f.pos.Offset.X, 1e-12)
}

func TestStep_TransitBlocksOtherChanges(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 3000), pos: Transit(0, 1, 10000)}
	f.nav.Action = Jumping()
	f.nav.Push(ReachNode(2))

	s.Step(f.agent(w))
	assert.True(t, f.pos.InTransit)
	assert.Equal(t, 3000, f.pos.Progress)
	assert.Equal(t, ActionJumping, f.nav.Action.Kind)
	assert.Len(t, f.nav.Plans, 1)
}

func TestStep_MoveTo(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(0.25, 1), pos: AtNode(1, geom.Vec3{})}
	f.nav.Action = MoveTo(geom.Vec3{Z: 0.5})

	s.Step(f.agent(w))
	assert.Equal(t, ActionMoveTo, f.nav.Action.Kind)
	assert.InDelta(t, 0.25, f.pos.Offset.Z, 1e-12)

	s.Step(f.agent(w))
	assert.Equal(t, ActionIdle, f.nav.Action.Kind)
	assert.InDelta(t, 0.5, f.pos.Offset.Z, 1e-12)
}

func TestStep_ColonisingCompletes(t *testing.T) {
	w := abc()
	w.targets[9] = geom.Vec3{X: 0.1}
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(1, geom.Vec3{})}
	f.nav.Push(Colonise(9))

	s.Step(f.agent(w))
	require.Equal(t, ActionColonising, f.nav.Action.Kind)
	assert.Equal(t, ColoniseDuration, f.nav.Action.Remaining)

	var done Report
	for i := 0; i < ColoniseDuration; i++ {
		done = s.Step(f.agent(w))
	}
	assert.True(t, done.Completed)
	assert.Equal(t, TargetID(9), done.Target)
	assert.Equal(t, ActionBeingDestroyed, f.nav.Action.Kind)

	// Terminal.
	r := s.Step(f.agent(w))
	assert.False(t, r.Completed)
	assert.Equal(t, ActionBeingDestroyed, f.nav.Action.Kind)
}

func TestStep_ColonisingTargetGone(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(1, geom.Vec3{})}
	f.nav.Action = Colonising(4, 10)

	s.Step(f.agent(w))
	assert.Equal(t, ActionIdle, f.nav.Action.Kind)
}

func TestStep_JumpOutOfPositionAbandons(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(0.1, 1), pos: AtNode(0, geom.Vec3{})}
	f.nav.Push(ReachNode(2))
	f.nav.Push(Jump(1))

	r := s.Step(f.agent(w))
	assert.Equal(t, AbandonOutOfPosition, r.Abandoned)
	assert.Empty(t, f.nav.Plans)
	assert.Equal(t, ActionIdle, f.nav.Action.Kind)
}

func TestStep_JumpToNonNeighbourPanics(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(0, geom.Vec3{})}
	f.nav.Push(Jump(2))
	assert.Panics(t, func() { s.Step(f.agent(w)) })
}

func TestStep_ReachNodeNoPathAbandons(t *testing.T) {
	w := abc()
	m := graph.NewTerritoryMask(w.u)
	m.Block(1)
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(0, geom.Vec3{})}
	f.nav.Push(Colonise(3))
	f.nav.Push(ReachNode(2))

	a := f.agent(w)
	a.Paths = w.u.Filter(m)
	r := s.Step(a)
	assert.Equal(t, AbandonNoPath, r.Abandoned)
	assert.Empty(t, f.nav.Plans)
	assert.Equal(t, ActionIdle, f.nav.Action.Kind)
}

func TestStep_ReachNodeAlreadyThere(t *testing.T) {
	w := abc()
	w.targets[3] = geom.Vec3{}
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(2, geom.Vec3{})}
	f.nav.Push(Colonise(3))
	f.nav.Push(ReachNode(2))

	s.Step(f.agent(w))
	assert.Empty(t, f.nav.Plans)
	assert.Equal(t, ActionColonising, f.nav.Action.Kind)
}

func TestStep_StrandedRetreatsHome(t *testing.T) {
	w := abc()
	w.owners[0] = 1
	w.owners[2] = 7
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 10000), pos: AtNode(2, geom.Vec3{})}
	f.nav.Push(ReachNode(1))

	r := s.Step(f.agent(w, 0))
	assert.True(t, r.Stranded)
	assert.True(t, f.nav.Retreating)
	require.Len(t, f.nav.Plans, 2)
	assert.Equal(t, ReachOwnedTerritory(), f.nav.Plans[0])
	assert.Equal(t, Jump(1), f.nav.Plans[1])
	assert.Equal(t, ActionMoveTo, f.nav.Action.Kind)

	// Still hostile: not re-triggered.
	r = s.Step(f.agent(w, 0))
	assert.False(t, r.Stranded)
	assert.True(t, f.nav.Retreating)

	// Neutral B does not end the retreat; only owned A does.
	passedB := false
	for i := 0; i < 20 && f.nav.Retreating; i++ {
		s.Step(f.agent(w, 0))
		assertIdleAtNode(t, f)
		if f.pos.IsAtNode() && f.pos.Node == 1 {
			passedB = true
			assert.True(t, f.nav.Retreating, "retreat ended on neutral node")
			assert.NotEmpty(t, f.nav.Plans)
		}
	}
	assert.True(t, passedB)
	require.False(t, f.nav.Retreating)
	assert.Equal(t, graph.NodeID(0), f.pos.Node)
	assert.Empty(t, f.nav.Plans)
	assert.Equal(t, ActionIdle, f.nav.Action.Kind)
}

func TestStep_ReachOwnedTerritoryWalksHome(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 10000), pos: AtNode(2, geom.Vec3{})}
	f.nav.Push(ReachOwnedTerritory())

	for i := 0; i < 10 && len(f.nav.Plans) > 0; i++ {
		s.Step(f.agent(w, 0))
		assertIdleAtNode(t, f)
	}
	assert.Empty(t, f.nav.Plans)
	assert.Equal(t, graph.NodeID(0), f.pos.Node)
}

func TestStep_ReachOwnedTerritoryEmptyPanics(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(2, geom.Vec3{})}
	f.nav.Push(ReachOwnedTerritory())
	assert.Panics(t, func() { s.Step(f.agent(w)) })
}

func TestStep_StrandedWithoutTerritory(t *testing.T) {
	w := abc()
	w.owners[1] = 7
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(1, geom.Vec3{})}
	f.nav.Push(ReachNode(2))

	r := s.Step(f.agent(w))
	assert.True(t, r.Stranded)
	assert.Equal(t, AbandonNoTerritory, r.Abandoned)
	assert.Empty(t, f.nav.Plans)
}

func TestStep_ExpansionCap(t *testing.T) {
	w := abc()
	s := stepper(w)
	f := &fleet{nav: NewNavigator(1, 1), pos: AtNode(1, geom.Vec3{})}
	for i := 0; i < MaxPlanExpansions+4; i++ {
		f.nav.Push(ReachNode(1))
	}

	s.Step(f.agent(w))
	assert.Len(t, f.nav.Plans, 4)
	s.Step(f.agent(w))
	assert.Empty(t, f.nav.Plans)
}

func TestTransitPoint(t *testing.T) {
	w := abc()
	assert.Equal(t, geom.Vec3{X: radius}, TransitPoint(w.u, 0, 1, radius))
	assert.Equal(t, geom.Vec3{X: -radius}, TransitPoint(w.u, 1, 0, radius))
}

func TestPosition_WorldPos(t *testing.T) {
	w := abc()
	p := Transit(0, 1, 10000)
	p.Progress = 2500
	assert.InDelta(t, 0.25, p.WorldPos(w.u).X, 1e-12)
	assert.InDelta(t, 1.5, AtNode(1, geom.Vec3{X: 0.5}).WorldPos(w.u).X, 1e-12)
}
