package graph

import (
	"container/heap"
	"math"
)

// Unreachable marks a node with no path from any source in Distances.
const Unreachable = -1

// Distances is indexed by NodeID. Unreachable nodes hold Unreachable.
type Distances []int

// At returns the distance to n and whether n was reached.
func (d Distances) At(n NodeID) (int, bool) {
	v := d[n]
	return v, v != Unreachable
}

// Pathfinder runs shortest-path queries over a Universe, optionally
// restricted by a Mask. The zero mask means the full graph.
type Pathfinder struct {
	u    *Universe
	mask Mask
}

// Pathfinder returns a query view over the whole graph.
func (u *Universe) Pathfinder() Pathfinder {
	return Pathfinder{u: u}
}

// Filter returns a query view that only traverses lanes the mask allows.
func (u *Universe) Filter(m Mask) Pathfinder {
	return Pathfinder{u: u, mask: m}
}

// Universe returns the graph the view searches.
func (p Pathfinder) Universe() *Universe { return p.u }

// FindPath returns the shortest path from a to b, or nil if b is unreachable.
func (p Pathfinder) FindPath(a, b NodeID) *Path {
	return p.search([]NodeID{a}, b, noEdge)
}

// FindPathWithoutDirectEdge is FindPath with the lane joining a and b excluded.
// A non-nil result means that lane can be removed without disconnecting a from b.
func (p Pathfinder) FindPathWithoutDirectEdge(a, b NodeID) *Path {
	skip := noEdge
	if e, ok := p.u.FindLane(a, b); ok {
		skip = int64(e)
	}
	return p.search([]NodeID{a}, b, skip)
}

// FindPathMultiSource returns the cheapest path from any source to b.
func (p Pathfinder) FindPathMultiSource(sources []NodeID, b NodeID) *Path {
	if len(sources) == 0 {
		return nil
	}
	return p.search(sources, b, noEdge)
}

// Dijkstra computes the distance from the nearest source to every node.
func (p Pathfinder) Dijkstra(sources []NodeID) Distances {
	n := p.u.NodeCount()
	dist := make(Distances, n)
	for i := range dist {
		dist[i] = Unreachable
	}

	pq := &priorityQueue{}
	var seq uint64
	for _, s := range sources {
		p.u.checkNode(s)
		if dist[s] == 0 {
			continue
		}
		dist[s] = 0
		heap.Push(pq, pqItem{node: s, priority: 0, seq: seq})
		seq++
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.priority > dist[item.node] {
			continue
		}
		for _, e := range p.u.adj[item.node] {
			next := p.u.Other(e, item.node)
			if !p.usable(e, next) {
				continue
			}
			nd := item.priority + p.u.edges[e].Length
			if d := dist[next]; d == Unreachable || nd < d {
				dist[next] = nd
				heap.Push(pq, pqItem{node: next, priority: nd, seq: seq})
				seq++
			}
		}
	}
	return dist
}

const noEdge int64 = -1

// search is A* seeded with every source at cost zero. Nodes may be reopened
// when a cheaper route is found, so the result is optimal for any admissible
// heuristic.
func (p Pathfinder) search(sources []NodeID, goal NodeID, skip int64) *Path {
	p.u.checkNode(goal)
	for _, s := range sources {
		p.u.checkNode(s)
		if s == goal {
			return singleNodePath(goal)
		}
	}

	n := p.u.NodeCount()
	best := make([]int, n)
	via := make([]int64, n)
	for i := range best {
		best[i] = math.MaxInt
		via[i] = noEdge
	}

	goalPos := p.u.Pos(goal)
	h := func(node NodeID) int {
		return int(math.Floor(p.u.Pos(node).Distance(goalPos) * IntegerScale))
	}

	pq := &priorityQueue{}
	var seq uint64
	for _, s := range sources {
		if best[s] == 0 {
			continue
		}
		best[s] = 0
		heap.Push(pq, pqItem{node: s, cost: 0, priority: h(s), seq: seq})
		seq++
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.cost > best[item.node] {
			continue
		}
		if item.node == goal {
			return p.trace(goal, via)
		}
		for _, e := range p.u.adj[item.node] {
			if int64(e) == skip {
				continue
			}
			next := p.u.Other(e, item.node)
			if !p.usable(e, next) {
				continue
			}
			g := item.cost + p.u.edges[e].Length
			if g < best[next] {
				best[next] = g
				via[next] = int64(e)
				heap.Push(pq, pqItem{node: next, cost: g, priority: g + h(next), seq: seq})
				seq++
			}
		}
	}
	return nil
}

func (p Pathfinder) usable(e EdgeID, entered NodeID) bool {
	if p.mask == nil {
		return true
	}
	return p.mask.EdgeUsable(e) && p.mask.NodeUsable(entered)
}

func (p Pathfinder) trace(goal NodeID, via []int64) *Path {
	path := &Path{}
	cur := goal
	for {
		path.Nodes = append(path.Nodes, cur)
		e := via[cur]
		if e == noEdge {
			break
		}
		path.Edges = append(path.Edges, EdgeID(e))
		cur = p.u.Other(EdgeID(e), cur)
	}
	path = path.Reverse()
	path.mustBeWellFormed()
	return path
}

// Priority queue for A* and Dijkstra. Equal priorities pop in insertion order.
type pqItem struct {
	node     NodeID
	cost     int
	priority int
	seq      uint64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
