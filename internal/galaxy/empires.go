package galaxy

import (
	"fmt"
	"math/rand/v2"
)

// PlaceEmpires founds up to n empires. Each one takes the best-scoring body
// in a system nobody holds yet, claims that system and settles its home
// world with homePopulation. It returns the home bodies in empire order.
func (g *Galaxy) PlaceEmpires(n int, homePopulation int64, rng *rand.Rand) []BodyID {
	var homes []BodyID
	for i := 0; i < n; i++ {
		best, bestScore, found := BodyID(0), 0.0, false
		for _, s := range g.Stars {
			if _, taken := g.Owner(s.Node); taken {
				continue
			}
			for _, b := range s.Bodies {
				score := (0.01 + rng.Float64()*0.99) / g.Bodies[b].VisualRadius()
				if !found || score > bestScore {
					best, bestScore, found = b, score, true
				}
			}
		}
		if !found {
			break
		}
		body := &g.Bodies[best]
		id := g.AddEmpire(fmt.Sprintf("Empire %d", len(g.Empires)+1), body.Star)
		g.Claim(body.Node, id, 0)
		g.Settle(best, id, homePopulation, 0)
		homes = append(homes, best)
	}
	return homes
}
