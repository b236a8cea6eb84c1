package engine

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"starlane/internal/galaxy"
	"starlane/internal/graph"
	"starlane/internal/nav"
)

// scanColonization picks a destination for every fleet carrying colonists.
// Fleets are split into fixed-size batches scanned in parallel; each batch
// only reads shared state and writes the destination fields of its own fleets.
func (s *Simulation) scanColonization(ctx context.Context) error {
	var pending []*Fleet
	for _, f := range s.fleets {
		if s.wantsDestination(f) {
			pending = append(pending, f)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	batch := max(s.opts.ScanBatch, 1)
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(pending); start += batch {
		chunk := pending[start:min(start+batch, len(pending))]
		g.Go(func() error {
			for _, f := range chunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.selectDestination(f)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Simulation) wantsDestination(f *Fleet) bool {
	if f.Colonists <= 0 || f.Nav.Retreating || f.Pos.InTransit {
		return false
	}
	switch f.Nav.Action.Kind {
	case nav.ActionColonising, nav.ActionBeingDestroyed:
		return false
	}
	return true
}

// selectDestination revalidates f's destination every RevalidateInterval
// ticks and searches for a new one when it has none.
func (s *Simulation) selectDestination(f *Fleet) {
	if f.HasDestination {
		if s.tick-f.LastValidated < s.opts.RevalidateInterval {
			return
		}
		f.LastValidated = s.tick
		if s.destinationValid(f) {
			return
		}
		f.HasDestination = false
		f.Nav.ClearPlans()
		if f.Nav.Action.Kind == nav.ActionMoveTo {
			f.Nav.Action = nav.Idle()
		}
	}

	body, ok := s.bestTarget(f)
	if !ok {
		return
	}
	f.Destination = body
	f.HasDestination = true
	f.LastValidated = s.tick
}

func (s *Simulation) destinationValid(f *Fleet) bool {
	body, ok := s.Galaxy.Body(f.Destination)
	if !ok {
		return false
	}
	if owner, claimed := s.Galaxy.Owner(body.Node); claimed && owner != f.Owner {
		return false
	}
	paths := s.Galaxy.Universe.Filter(s.masks[f.Owner])
	return paths.FindPath(f.Node(), body.Node) != nil
}

// bestTarget ranks every body reachable under the owner's mask. Unclaimed
// bodies score their lane distance; bodies the owner already settled score
// ColonizedPenalty, so reinforcing is a last resort. Both get random jitter.
func (s *Simulation) bestTarget(f *Fleet) (galaxy.BodyID, bool) {
	paths := s.Galaxy.Universe.Filter(s.masks[f.Owner])
	dist := paths.Dijkstra([]graph.NodeID{f.Node()})
	rng := s.jitterRand(f.ID)

	best, bestScore := galaxy.BodyID(0), math.Inf(1)
	for i := range s.Galaxy.Stars {
		star := &s.Galaxy.Stars[i]
		d, ok := dist.At(star.Node)
		if !ok {
			continue
		}
		if owner, claimed := s.Galaxy.Owner(star.Node); claimed && owner != f.Owner {
			continue
		}
		for _, b := range star.Bodies {
			jitter := rng.Float64() * s.opts.Jitter
			var score float64
			if c, settled := s.Galaxy.Colony(b); settled {
				if c.Owner != f.Owner {
					continue
				}
				score = s.opts.ColonizedPenalty + jitter
			} else {
				score = float64(d) + jitter
			}
			if score < bestScore {
				best, bestScore = b, score
			}
		}
	}
	return best, !math.IsInf(bestScore, 1)
}

// jitterRand derives a generator from the run seed, tick and fleet so a scan
// gives the same answer however batches are scheduled.
func (s *Simulation) jitterRand(id FleetID) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(s.opts.Seed)^s.tick*0x9e3779b97f4a7c15, uint64(id)))
}
