// Package propgraph is a self-contained adjacency-list representation
// of a single cascade's propagation graph (who influenced whom), with
// the structural metrics the analysis engine needs: BFS distances,
// cascade depth, structural virality, and node centrality.
//
// Graphs are built once by a single owner and then only read, so no
// locking is done here.
package propgraph

import (
	"fmt"
)

// NodeID is a compact interned identifier for a participant. IDs are
// assigned in insertion order, which gives every traversal a stable
// node ordering.
type NodeID uint32

type Graph struct {
	uids  map[string]NodeID
	users []string

	out [][]NodeID
	in  [][]NodeID
	und [][]NodeID

	outSet map[uint64]struct{}
	undSet map[uint64]struct{}

	edgeCount int
}

func NewGraph() *Graph {
	return &Graph{
		uids:   map[string]NodeID{},
		outSet: map[uint64]struct{}{},
		undSet: map[uint64]struct{}{},
	}
}

// AcquireUser links a user to a NodeID, creating a new node if
// necessary. If the user is already known, the existing ID is returned.
func (g *Graph) AcquireUser(user string) NodeID {
	if uid, ok := g.uids[user]; ok {
		return uid
	}
	uid := NodeID(len(g.users))
	g.uids[user] = uid
	g.users = append(g.users, user)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.und = append(g.und, nil)
	return uid
}

func (g *Graph) GetNodeID(user string) (NodeID, bool) {
	uid, ok := g.uids[user]
	return uid, ok
}

func (g *Graph) User(uid NodeID) string {
	return g.users[uid]
}

// Users returns all participants in insertion order.
func (g *Graph) Users() []string {
	out := make([]string, len(g.users))
	copy(out, g.users)
	return out
}

func (g *Graph) NodeCount() int {
	return len(g.users)
}

func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

func pairKey(a, b NodeID) uint64 {
	return uint64(a)<<32 | uint64(b)
}

// AddEdge records a directed influence edge. Parallel edges are
// collapsed. A self-loop registers the node but adds no edge.
func (g *Graph) AddEdge(source, target string) error {
	if source == "" || target == "" {
		return fmt.Errorf("edge with empty endpoint (source=%q target=%q)", source, target)
	}
	s := g.AcquireUser(source)
	t := g.AcquireUser(target)
	if s == t {
		return nil
	}
	if _, dup := g.outSet[pairKey(s, t)]; !dup {
		g.outSet[pairKey(s, t)] = struct{}{}
		g.out[s] = append(g.out[s], t)
		g.in[t] = append(g.in[t], s)
		g.edgeCount++
	}

	lo, hi := s, t
	if lo > hi {
		lo, hi = hi, lo
	}
	if _, dup := g.undSet[pairKey(lo, hi)]; !dup {
		g.undSet[pairKey(lo, hi)] = struct{}{}
		g.und[s] = append(g.und[s], t)
		g.und[t] = append(g.und[t], s)
	}
	return nil
}

// OutNeighbors returns the targets of a node's directed edges.
func (g *Graph) OutNeighbors(uid NodeID) []NodeID {
	return g.out[uid]
}

// Neighbors returns a node's neighbors in the undirected view.
func (g *Graph) Neighbors(uid NodeID) []NodeID {
	return g.und[uid]
}

// Degree is the node's degree in the undirected view.
func (g *Graph) Degree(uid NodeID) int {
	return len(g.und[uid])
}

// ShortestPathLengths runs unweighted BFS over the undirected view and
// returns the distance from src to every node, -1 for unreachable.
func (g *Graph) ShortestPathLengths(src NodeID) []int {
	dist := make([]int, len(g.users))
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []NodeID{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nbr := range g.und[cur] {
			if dist[nbr] < 0 {
				dist[nbr] = dist[cur] + 1
				queue = append(queue, nbr)
			}
		}
	}
	return dist
}

// IsConnected reports whether the undirected view is a single
// component. The empty graph counts as connected.
func (g *Graph) IsConnected() bool {
	n := len(g.users)
	if n <= 1 {
		return true
	}
	reached := 0
	for _, d := range g.ShortestPathLengths(0) {
		if d >= 0 {
			reached++
		}
	}
	return reached == n
}
