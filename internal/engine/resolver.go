package engine

import (
	"starlane/internal/graph"
	"starlane/internal/nav"
)

// resolve applies colonization events in emission order. A fleet completing
// on a system or colony held by another empire is rejected: it goes idle,
// loses its plans and destination, and survives to be retasked. Otherwise the
// system is claimed, the body settled and the fleet left to despawn.
func (s *Simulation) resolve(events []ColonizationEvent) []ColonizationRecord {
	records := make([]ColonizationRecord, 0, len(events))
	for _, ev := range events {
		f, ok := s.Fleet(ev.Fleet)
		if !ok {
			continue
		}
		rec := ColonizationRecord{
			Tick:      s.tick,
			Fleet:     f.ID,
			Empire:    f.Owner,
			Body:      ev.Body,
			Colonists: f.Colonists,
		}
		body, ok := s.Galaxy.Body(ev.Body)
		if !ok {
			rec.Outcome = OutcomeSkipped
			records = append(records, rec)
			s.observer.ObserveColonization(rec.Outcome)
			continue
		}
		rec.Node = body.Node

		if s.conflicts(f, body.Node, ev) {
			f.Nav.Action = nav.Idle()
			f.Nav.ClearPlans()
			f.HasDestination = false
			rec.Outcome = OutcomeRejected
		} else {
			s.Galaxy.Claim(body.Node, f.Owner, s.tick)
			if _, created := s.Galaxy.Settle(body.ID, f.Owner, f.Colonists, s.tick); created {
				rec.Outcome = OutcomeFounded
			} else {
				rec.Outcome = OutcomeReinforced
			}
		}
		records = append(records, rec)
		s.observer.ObserveColonization(rec.Outcome)
		s.log.Debug().
			Uint32("fleet", uint32(f.ID)).
			Uint32("body", uint32(ev.Body)).
			Str("outcome", string(rec.Outcome)).
			Msg("Colonization resolved")
	}
	return records
}

func (s *Simulation) conflicts(f *Fleet, node graph.NodeID, ev ColonizationEvent) bool {
	if owner, claimed := s.Galaxy.Owner(node); claimed && owner != f.Owner {
		return true
	}
	if c, ok := s.Galaxy.Colony(ev.Body); ok && c.Owner != f.Owner {
		return true
	}
	return false
}
