package propgraph

// maxDegreeNode picks the default BFS root: the node with the highest
// degree, ties broken by the lowest (first-inserted) NodeID.
func (g *Graph) maxDegreeNode() (NodeID, bool) {
	if len(g.users) == 0 {
		return 0, false
	}
	best := NodeID(0)
	bestDeg := g.Degree(0)
	for uid := 1; uid < len(g.users); uid++ {
		if d := g.Degree(NodeID(uid)); d > bestDeg {
			best = NodeID(uid)
			bestDeg = d
		}
	}
	return best, true
}

// Depth is the maximum finite BFS distance from the max-degree node.
// Unreachable nodes are excluded from the maximum rather than treated
// as infinite. An empty graph has depth 0.
func (g *Graph) Depth() int {
	root, ok := g.maxDegreeNode()
	if !ok {
		return 0
	}
	return g.DepthFrom(root)
}

// DepthFrom is Depth rooted at an explicit node.
func (g *Graph) DepthFrom(root NodeID) int {
	maxDist := 0
	for _, d := range g.ShortestPathLengths(root) {
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

// StructuralVirality is the mean BFS distance over all reachable
// (source, target) terms, each source's self-distance included
// (Goel et al. 2016). Low values indicate broadcast-style spread from
// a hub; high values indicate chain-like peer-to-peer spread. Graphs
// with at most one node score 0.0 by convention.
func (g *Graph) StructuralVirality() float64 {
	if len(g.users) <= 1 {
		return 0.0
	}
	totalDist := 0
	count := 0
	for uid := range g.users {
		for _, d := range g.ShortestPathLengths(NodeID(uid)) {
			if d >= 0 {
				totalDist += d
				count++
			}
		}
	}
	if count == 0 {
		return 0.0
	}
	return float64(totalDist) / float64(count)
}
