// Package nav drives fleets through the lane network. Each fleet carries a
// Navigator: a stack of Plans (intents) expanded into one Action at a time.
package nav

import (
	"fmt"

	"github.com/rs/zerolog"

	"starlane/internal/galaxy"
	"starlane/internal/geom"
	"starlane/internal/graph"
)

const (
	// MaxPlanExpansions caps plan expansion per fleet per tick.
	MaxPlanExpansions = 16
	// ColoniseDuration is how many ticks a fleet spends settling a target.
	ColoniseDuration = 60
)

// Abandon reasons reported when a plan stack is cleared.
const (
	AbandonNoPath        = "no_path"
	AbandonOutOfPosition = "out_of_position"
	AbandonNoTerritory   = "no_territory"
)

// Navigator is the per-fleet navigation state.
type Navigator struct {
	Action Action
	// Plans is a stack; the last element is the top.
	Plans []Plan
	// Speed is the in-system movement per tick, in galactic units.
	Speed float64
	// Hyperspeed is lane progress per tick, in lane length units.
	Hyperspeed int
	// Retreating is set while a stranded fleet heads home.
	Retreating bool
}

// NewNavigator returns an idle navigator with no plans.
func NewNavigator(speed float64, hyperspeed int) Navigator {
	return Navigator{Action: Idle(), Speed: speed, Hyperspeed: hyperspeed}
}

func (n *Navigator) Push(p Plan) { n.Plans = append(n.Plans, p) }

func (n *Navigator) Peek() (Plan, bool) {
	if len(n.Plans) == 0 {
		return Plan{}, false
	}
	return n.Plans[len(n.Plans)-1], true
}

func (n *Navigator) Pop() {
	if len(n.Plans) > 0 {
		n.Plans = n.Plans[:len(n.Plans)-1]
	}
}

func (n *Navigator) ClearPlans() { n.Plans = n.Plans[:0] }

// World is the read-only view of the galaxy a navigator needs.
type World interface {
	Universe() *graph.Universe
	SystemRadius(n graph.NodeID) float64
	Owner(n graph.NodeID) (galaxy.EmpireID, bool)
	// TargetLocalPos returns the target's offset within its system, or false
	// if the target no longer exists.
	TargetLocalPos(t TargetID) (geom.Vec3, bool)
}

// Agent is everything Step needs about one fleet.
type Agent struct {
	Owner galaxy.EmpireID
	Nav   *Navigator
	Pos   *Position
	// Paths is the owner's filtered view used for ReachNode.
	Paths graph.Pathfinder
	// Owned is the owner's territory, the goal set for ReachOwnedTerritory.
	Owned []graph.NodeID
}

// Report summarises what happened to a fleet during one Step.
type Report struct {
	Arrived   bool
	Completed bool
	Target    TargetID
	Abandoned string
	Stranded  bool
}

// Stepper advances fleets one tick at a time against a World.
type Stepper struct {
	World World
	Log   zerolog.Logger
}

// Step runs one tick for a: transit, stranded check, action, plan expansion.
func (s *Stepper) Step(a Agent) Report {
	var r Report
	nav, pos := a.Nav, a.Pos

	if pos.InTransit {
		pos.Progress += nav.Hyperspeed
		if pos.Progress < pos.Total {
			return r
		}
		from := pos.Node
		*pos = AtNode(pos.To, TransitPoint(s.World.Universe(), pos.To, from, s.World.SystemRadius(pos.To)))
		r.Arrived = true
	}

	s.checkStranded(a, &r)
	s.execute(a, &r)

	if nav.Action.Kind == ActionIdle {
		if pos.InTransit {
			panic(fmt.Sprintf("nav: idle fleet in transit %s", pos))
		}
		s.expand(a, &r)
	}
	return r
}

func (s *Stepper) checkStranded(a Agent, r *Report) {
	nav := a.Nav
	if nav.Action.Kind == ActionBeingDestroyed {
		return
	}
	owner, claimed := s.World.Owner(a.Pos.Node)
	hostile := claimed && owner != a.Owner
	switch {
	case hostile && !nav.Retreating:
		nav.Retreating = true
		nav.Action = Idle()
		nav.ClearPlans()
		r.Stranded = true
		if len(a.Owned) == 0 {
			r.Abandoned = AbandonNoTerritory
			return
		}
		nav.Push(ReachOwnedTerritory())
	case claimed && owner == a.Owner && nav.Retreating:
		nav.Retreating = false
		nav.ClearPlans()
	}
}

func (s *Stepper) execute(a Agent, r *Report) {
	nav, pos := a.Nav, a.Pos
	switch nav.Action.Kind {
	case ActionIdle, ActionBeingDestroyed:
	case ActionJumping:
		if !pos.InTransit {
			nav.Action = Idle()
		}
	case ActionColonising:
		target, ok := s.World.TargetLocalPos(nav.Action.Target)
		if !ok {
			nav.Action = Idle()
			return
		}
		var reached bool
		pos.Offset, reached = pos.Offset.StepToward(target, nav.Speed)
		if !reached {
			return
		}
		nav.Action.Remaining--
		if nav.Action.Remaining <= 0 {
			r.Completed = true
			r.Target = nav.Action.Target
			nav.Action = BeingDestroyed()
		}
	case ActionMoveTo:
		var reached bool
		pos.Offset, reached = pos.Offset.StepToward(nav.Action.Point, nav.Speed)
		if reached {
			nav.Action = Idle()
		}
	}
}

func (s *Stepper) expand(a Agent, r *Report) {
	nav, pos := a.Nav, a.Pos
	u := s.World.Universe()
	for i := 0; nav.Action.Kind == ActionIdle; i++ {
		plan, ok := nav.Peek()
		if !ok {
			return
		}
		if i == MaxPlanExpansions {
			s.Log.Warn().
				Int("expansions", i).
				Str("top", plan.Kind.String()).
				Int("depth", len(nav.Plans)).
				Msg("Plan expansion cap reached")
			return
		}
		cur := pos.Node

		switch plan.Kind {
		case PlanJump:
			lane, ok := u.FindLane(cur, plan.Node)
			if !ok {
				panic(fmt.Sprintf("nav: jump from %d to non-neighbour %d", cur, plan.Node))
			}
			tp := TransitPoint(u, cur, plan.Node, s.World.SystemRadius(cur))
			if pos.Offset.Distance(tp) > nav.Speed {
				nav.ClearPlans()
				r.Abandoned = AbandonOutOfPosition
				return
			}
			nav.Pop()
			nav.Action = Jumping()
			*pos = Transit(cur, plan.Node, u.Edge(lane).Length)

		case PlanColonise:
			nav.Pop()
			nav.Action = Colonising(plan.Target, ColoniseDuration)

		case PlanReachPoint:
			nav.Pop()
			nav.Action = MoveTo(plan.Point)

		case PlanReachOwnedTerritory:
			if len(a.Owned) == 0 {
				panic("nav: reach owned territory with no owned nodes")
			}
			if owns(a.Owned, cur) {
				nav.Pop()
				continue
			}
			p := u.Pathfinder().FindPathMultiSource(a.Owned, cur)
			if p == nil {
				nav.ClearPlans()
				nav.Retreating = false
				r.Abandoned = AbandonNoPath
				return
			}
			s.pushHop(a, p.Reverse())

		case PlanReachNode:
			if plan.Node == cur {
				nav.Pop()
				continue
			}
			p := a.Paths.FindPath(cur, plan.Node)
			if p == nil {
				nav.ClearPlans()
				r.Abandoned = AbandonNoPath
				return
			}
			s.pushHop(a, p)
		}
	}
}

// pushHop queues the first lane of p: move to the transit point, then jump.
func (s *Stepper) pushHop(a Agent, p *graph.Path) {
	cur := a.Pos.Node
	if p.Start() != cur {
		panic(fmt.Sprintf("nav: path starts at %d, fleet is at %d", p.Start(), cur))
	}
	next, ok := p.NextHop()
	if !ok {
		panic(fmt.Sprintf("nav: single-node path from %d used as a hop", cur))
	}
	a.Nav.Push(Jump(next))
	a.Nav.Push(ReachPoint(TransitPoint(s.World.Universe(), cur, next, s.World.SystemRadius(cur))))
}

func owns(owned []graph.NodeID, n graph.NodeID) bool {
	for _, o := range owned {
		if o == n {
			return true
		}
	}
	return false
}
