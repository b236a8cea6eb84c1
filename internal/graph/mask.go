package graph

// Mask restricts which lanes and nodes a filtered Pathfinder may traverse.
// The start node of a query is always allowed.
type Mask interface {
	EdgeUsable(e EdgeID) bool
	NodeUsable(n NodeID) bool
}

// TerritoryMask is the navigation mask of one empire: its owned nodes plus
// whatever neutral space it may cross. Nodes and lanes are usable unless
// blocked. Blocking a node does not block its lanes, so a fleet standing on a
// blocked node can still leave it.
type TerritoryMask struct {
	u            *Universe
	blocked      []uint64
	blockedLanes []uint64
	owned        []NodeID
}

// NewTerritoryMask returns a mask over u with every node usable and none owned.
func NewTerritoryMask(u *Universe) *TerritoryMask {
	return &TerritoryMask{
		u:            u,
		blocked:      make([]uint64, (u.NodeCount()+63)/64),
		blockedLanes: make([]uint64, (u.EdgeCapacity()+63)/64),
	}
}

// Reset makes every node usable and forgets owned nodes.
func (m *TerritoryMask) Reset() {
	clear(m.blocked)
	clear(m.blockedLanes)
	m.owned = m.owned[:0]
}

// Block forbids entering n.
func (m *TerritoryMask) Block(n NodeID) {
	m.u.checkNode(n)
	m.blocked[n/64] |= 1 << (n % 64)
}

// BlockLane forbids traversing e in either direction.
func (m *TerritoryMask) BlockLane(e EdgeID) {
	m.blockedLanes[e/64] |= 1 << (e % 64)
}

// Own records n as owned territory. Owned nodes are always usable.
func (m *TerritoryMask) Own(n NodeID) {
	m.u.checkNode(n)
	m.blocked[n/64] &^= 1 << (n % 64)
	m.owned = append(m.owned, n)
}

// Owned returns the owned nodes in the order they were added.
func (m *TerritoryMask) Owned() []NodeID {
	return m.owned
}

// NodeUsable implements Mask.
func (m *TerritoryMask) NodeUsable(n NodeID) bool {
	return m.blocked[n/64]&(1<<(n%64)) == 0
}

// EdgeUsable implements Mask.
func (m *TerritoryMask) EdgeUsable(e EdgeID) bool {
	if int(e/64) >= len(m.blockedLanes) {
		return true
	}
	return m.blockedLanes[e/64]&(1<<(e%64)) == 0
}
