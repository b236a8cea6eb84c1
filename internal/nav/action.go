package nav

import (
	"fmt"

	"starlane/internal/geom"
	"starlane/internal/graph"
)

// TargetID identifies a colonization target. The navigator never interprets it.
type TargetID uint32

type ActionKind uint8

const (
	ActionIdle ActionKind = iota
	ActionMoveTo
	ActionJumping
	ActionColonising
	ActionBeingDestroyed
)

var actionNames = [...]string{"idle", "move_to", "jumping", "colonising", "being_destroyed"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", k)
}

// Action is what a fleet is executing this tick.
type Action struct {
	Kind      ActionKind
	Point     geom.Vec3
	Target    TargetID
	Remaining int
}

func Idle() Action              { return Action{Kind: ActionIdle} }
func MoveTo(p geom.Vec3) Action { return Action{Kind: ActionMoveTo, Point: p} }
func Jumping() Action           { return Action{Kind: ActionJumping} }
func BeingDestroyed() Action    { return Action{Kind: ActionBeingDestroyed} }

func Colonising(t TargetID, ticks int) Action {
	return Action{Kind: ActionColonising, Target: t, Remaining: ticks}
}

type PlanKind uint8

const (
	PlanReachNode PlanKind = iota
	PlanReachPoint
	PlanJump
	PlanColonise
	PlanReachOwnedTerritory
)

var planNames = [...]string{"reach_node", "reach_point", "jump", "colonise", "reach_owned_territory"}

func (k PlanKind) String() string {
	if int(k) < len(planNames) {
		return planNames[k]
	}
	return fmt.Sprintf("plan(%d)", k)
}

// Plan is an intent waiting to be expanded into actions.
type Plan struct {
	Kind   PlanKind
	Node   graph.NodeID
	Point  geom.Vec3
	Target TargetID
}

func ReachNode(n graph.NodeID) Plan { return Plan{Kind: PlanReachNode, Node: n} }
func ReachPoint(p geom.Vec3) Plan   { return Plan{Kind: PlanReachPoint, Point: p} }
func Jump(n graph.NodeID) Plan      { return Plan{Kind: PlanJump, Node: n} }
func Colonise(t TargetID) Plan      { return Plan{Kind: PlanColonise, Target: t} }
func ReachOwnedTerritory() Plan     { return Plan{Kind: PlanReachOwnedTerritory} }
