package engine

import "starlane/internal/galaxy"

// launchColonyShips lets every colony gather crew from its population and
// launch a colony fleet once a full crew is aboard, while the owner is under
// its fleet cap.
func (s *Simulation) launchColonyShips() {
	if s.opts.CrewDivisor <= 0 || s.opts.ColonyShipCrew <= 0 {
		return
	}
	counts := make(map[galaxy.EmpireID]int, len(s.Galaxy.Empires))
	for _, f := range s.fleets {
		counts[f.Owner]++
	}
	for _, c := range s.Galaxy.Colonies() {
		c.Crew += c.Population / s.opts.CrewDivisor
		if c.Crew < s.opts.ColonyShipCrew {
			continue
		}
		if counts[c.Owner] >= s.opts.MaxFleetsPerEmpire {
			continue
		}
		body, ok := s.Galaxy.Body(c.Body)
		if !ok {
			continue
		}
		s.SpawnFleet(c.Owner, body.Node, body.LocalPos(), c.Crew)
		c.Crew = 0
		counts[c.Owner]++
		s.observer.ObserveLaunch()
	}
}
