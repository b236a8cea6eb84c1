package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"starlane/internal/galaxy"
	"starlane/internal/geom"
	"starlane/internal/graph"
	"starlane/internal/logger"
	"starlane/internal/nav"
)

// Options tunes fleets, colonization and launches.
type Options struct {
	Seed int64

	// Speed is in-system movement per tick; Hyperspeed is lane progress per tick.
	Speed      float64
	Hyperspeed int

	RevalidateInterval uint64
	ScanBatch          int
	ColonizedPenalty   float64
	Jitter             float64

	CrewDivisor        int64
	ColonyShipCrew     int64
	MaxFleetsPerEmpire int

	// SnapshotInterval is how often empire snapshots go to the Recorder. Zero disables them.
	SnapshotInterval uint64
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		Seed:               1,
		Speed:              galaxy.AUScale * 0.5,
		Hyperspeed:         10000,
		RevalidateInterval: 40,
		ScanBatch:          32,
		ColonizedPenalty:   1e12,
		Jitter:             100000,
		CrewDivisor:        30_000_000,
		ColonyShipCrew:     10000,
		MaxFleetsPerEmpire: 20,
		SnapshotInterval:   30,
	}
}

// Simulation owns the fleets of a galaxy and advances everything one tick at
// a time. It is not safe for concurrent use; callers serialise access.
type Simulation struct {
	Galaxy *galaxy.Galaxy

	opts      Options
	tick      uint64
	fleets    []*Fleet
	nextFleet FleetID
	masks     []*graph.TerritoryMask
	stepper   nav.Stepper
	recorder  Recorder
	observer  Observer
	log       zerolog.Logger
}

// New creates a simulation and gives every empire one colony fleet at its
// home world.
func New(g *galaxy.Galaxy, opts Options) *Simulation {
	s := &Simulation{
		Galaxy:   g,
		opts:     opts,
		observer: nopObserver{},
		log:      logger.For("SIM"),
	}
	s.stepper = nav.Stepper{World: s, Log: s.log}
	s.masks = make([]*graph.TerritoryMask, len(g.Empires))
	for i := range s.masks {
		s.masks[i] = graph.NewTerritoryMask(g.Universe)
	}
	for _, c := range g.Colonies() {
		body, _ := g.Body(c.Body)
		s.SpawnFleet(c.Owner, body.Node, body.LocalPos(), opts.ColonyShipCrew)
	}
	s.rebuildMasks()
	return s
}

// SetRecorder routes ledger entries and snapshots to r.
func (s *Simulation) SetRecorder(r Recorder) { s.recorder = r }

// SetObserver routes live counters to o.
func (s *Simulation) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// TickCount returns the number of completed ticks.
func (s *Simulation) TickCount() uint64 { return s.tick }

// Time returns the current simulation date.
func (s *Simulation) Time() SimTime { return SimTime{Days: s.tick} }

// Options returns the tuning in use.
func (s *Simulation) Options() Options { return s.opts }

// Fleets returns the live fleets in id order. The slice is shared; do not modify it.
func (s *Simulation) Fleets() []*Fleet { return s.fleets }

// Fleet returns the live fleet with the given id.
func (s *Simulation) Fleet(id FleetID) (*Fleet, bool) {
	i, ok := slices.BinarySearchFunc(s.fleets, id, func(f *Fleet, id FleetID) int {
		return cmp.Compare(f.ID, id)
	})
	if !ok {
		return nil, false
	}
	return s.fleets[i], true
}

// Mask returns the navigation mask of an empire.
func (s *Simulation) Mask(e galaxy.EmpireID) *graph.TerritoryMask { return s.masks[e] }

// SpawnFleet creates an idle fleet parked at node with the given colonists.
func (s *Simulation) SpawnFleet(owner galaxy.EmpireID, node graph.NodeID, offset geom.Vec3, colonists int64) *Fleet {
	f := &Fleet{
		ID:        s.nextFleet,
		Owner:     owner,
		Colonists: colonists,
		Nav:       nav.NewNavigator(s.opts.Speed, s.opts.Hyperspeed),
		Pos:       nav.AtNode(node, offset),
	}
	s.nextFleet++
	s.fleets = append(s.fleets, f)
	return f
}

// FleetCount returns how many live fleets an empire has.
func (s *Simulation) FleetCount(owner galaxy.EmpireID) int {
	n := 0
	for _, f := range s.fleets {
		if f.Owner == owner {
			n++
		}
	}
	return n
}

// Tick advances the simulation by one day.
func (s *Simulation) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	s.tick++

	s.rebuildMasks()
	s.Galaxy.AdvanceOrbits()
	s.launchColonyShips()

	events := s.navigate()

	if err := s.scanColonization(ctx); err != nil {
		return fmt.Errorf("colonization scan: %w", err)
	}
	s.assignTasks()

	records := s.resolve(events)
	s.despawn()

	if s.recorder != nil && len(records) > 0 {
		if err := s.recorder.RecordColonizations(records); err != nil {
			return fmt.Errorf("record colonizations: %w", err)
		}
	}
	if s.recorder != nil && s.opts.SnapshotInterval > 0 && s.tick%s.opts.SnapshotInterval == 0 {
		if err := s.recorder.RecordSnapshots(s.Snapshot()); err != nil {
			return fmt.Errorf("record snapshots: %w", err)
		}
	}

	claimed := 0
	for _, c := range s.Galaxy.ClaimCounts() {
		claimed += c
	}
	s.observer.ObserveTick(time.Since(start), len(s.fleets), claimed)
	return nil
}

// Run advances n ticks, stopping early if ctx is cancelled.
func (s *Simulation) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := s.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// navigate steps every fleet in id order and collects completed colonizations.
func (s *Simulation) navigate() []ColonizationEvent {
	var events []ColonizationEvent
	for _, f := range s.fleets {
		mask := s.masks[f.Owner]
		r := s.stepper.Step(nav.Agent{
			Owner: f.Owner,
			Nav:   &f.Nav,
			Pos:   &f.Pos,
			Paths: s.Galaxy.Universe.Filter(mask),
			Owned: mask.Owned(),
		})
		if r.Abandoned != "" {
			f.HasDestination = false
			s.observer.ObserveAbandon(r.Abandoned)
			s.log.Debug().Uint32("fleet", uint32(f.ID)).Str("reason", r.Abandoned).Msg("Plan abandoned")
		}
		if r.Completed {
			events = append(events, ColonizationEvent{Fleet: f.ID, Body: galaxy.BodyID(r.Target)})
		}
	}
	return events
}

// assignTasks gives idle fleets with a destination the plans to reach and settle it.
func (s *Simulation) assignTasks() {
	for _, f := range s.fleets {
		if !f.HasDestination || f.Colonists <= 0 || f.Nav.Retreating {
			continue
		}
		if f.Nav.Action.Kind != nav.ActionIdle || len(f.Nav.Plans) > 0 {
			continue
		}
		body, ok := s.Galaxy.Body(f.Destination)
		if !ok {
			f.HasDestination = false
			continue
		}
		f.Nav.Push(nav.Colonise(nav.TargetID(body.ID)))
		f.Nav.Push(nav.ReachNode(body.Node))
	}
}

func (s *Simulation) despawn() {
	s.fleets = slices.DeleteFunc(s.fleets, func(f *Fleet) bool {
		return f.Nav.Action.Kind == nav.ActionBeingDestroyed
	})
}

// Snapshot summarises every empire at the current tick.
func (s *Simulation) Snapshot() []EmpireSnapshot {
	snaps := make([]EmpireSnapshot, len(s.Galaxy.Empires))
	for i, e := range s.Galaxy.Empires {
		snaps[i] = EmpireSnapshot{Tick: s.tick, Empire: e.ID, Name: e.Name}
	}
	for owner, n := range s.Galaxy.ClaimCounts() {
		snaps[owner].Systems = n
	}
	for _, c := range s.Galaxy.Colonies() {
		snaps[c.Owner].Colonies++
		snaps[c.Owner].Population += c.Population
	}
	for _, f := range s.fleets {
		snaps[f.Owner].Fleets++
	}
	return snaps
}

// Universe implements nav.World.
func (s *Simulation) Universe() *graph.Universe { return s.Galaxy.Universe }

// SystemRadius implements nav.World.
func (s *Simulation) SystemRadius(n graph.NodeID) float64 { return s.Galaxy.SystemRadius(n) }

// Owner implements nav.World.
func (s *Simulation) Owner(n graph.NodeID) (galaxy.EmpireID, bool) { return s.Galaxy.Owner(n) }

// TargetLocalPos implements nav.World. Targets are body ids.
func (s *Simulation) TargetLocalPos(t nav.TargetID) (geom.Vec3, bool) {
	b, ok := s.Galaxy.Body(galaxy.BodyID(t))
	if !ok {
		return geom.Vec3{}, false
	}
	return b.LocalPos(), true
}
