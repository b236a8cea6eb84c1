package engine

import (
	"time"

	"starlane/internal/galaxy"
	"starlane/internal/graph"
	"starlane/internal/nav"
)

// FleetID identifies a fleet for its whole life. Ids are never reused.
type FleetID uint32

// Fleet is a colony ship moving through the lane network.
type Fleet struct {
	ID        FleetID
	Owner     galaxy.EmpireID
	Colonists int64

	// Destination is the body this fleet means to settle. Only the
	// colonization scan writes it, and only for its own fleet.
	Destination    galaxy.BodyID
	HasDestination bool
	LastValidated  uint64

	Nav nav.Navigator
	Pos nav.Position
}

// Node returns the node the fleet is at, or departed from while in transit.
func (f *Fleet) Node() graph.NodeID { return f.Pos.Node }

// ColonizationEvent is emitted when a fleet finishes colonising a body.
type ColonizationEvent struct {
	Fleet FleetID
	Body  galaxy.BodyID
}

// Outcome of resolving a ColonizationEvent.
type Outcome string

const (
	OutcomeFounded    Outcome = "founded"
	OutcomeReinforced Outcome = "reinforced"
	OutcomeRejected   Outcome = "rejected"
	OutcomeSkipped    Outcome = "skipped"
)

// ColonizationRecord is the ledger entry for one resolved event.
type ColonizationRecord struct {
	Tick      uint64
	Fleet     FleetID
	Empire    galaxy.EmpireID
	Body      galaxy.BodyID
	Node      graph.NodeID
	Colonists int64
	Outcome   Outcome
}

// EmpireSnapshot summarises one empire at a tick.
type EmpireSnapshot struct {
	Tick       uint64
	Empire     galaxy.EmpireID
	Name       string
	Systems    int
	Colonies   int
	Population int64
	Fleets     int
}

// Recorder persists what happened during a run.
type Recorder interface {
	RecordColonizations(records []ColonizationRecord) error
	RecordSnapshots(snaps []EmpireSnapshot) error
}

// Observer receives live counters for monitoring.
type Observer interface {
	ObserveTick(d time.Duration, fleets, claimed int)
	ObserveColonization(outcome Outcome)
	ObserveAbandon(reason string)
	ObserveLaunch()
}

type nopObserver struct{}

func (nopObserver) ObserveTick(time.Duration, int, int) {}
func (nopObserver) ObserveColonization(Outcome)         {}
func (nopObserver) ObserveAbandon(string)               {}
func (nopObserver) ObserveLaunch()                      {}
