package propgraph

const DefaultDamping = 0.85

const (
	pagerankMaxIter = 100
	pagerankTol     = 1e-6
)

// CentralityRow is one node's centrality metrics. Closeness is nil
// when the graph is disconnected (the measure is undefined across
// components) or when the node is absent from the graph entirely.
type CentralityRow struct {
	User        string   `json:"user"`
	Degree      float64  `json:"degree_centrality"`
	Betweenness float64  `json:"betweenness_centrality"`
	Closeness   *float64 `json:"closeness_centrality,omitempty"`
	PageRank    float64  `json:"pagerank"`
}

// Centrality computes degree, betweenness, closeness, and PageRank for
// the requested users, or for every node in insertion order when users
// is nil. Users absent from the graph get zero values. Disconnected
// graphs never raise; they just leave the closeness column unset.
func (g *Graph) Centrality(users []string, damping float64) []CentralityRow {
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	if users == nil {
		users = g.Users()
	}

	n := len(g.users)
	degree := make([]float64, n)
	if n > 1 {
		for uid := 0; uid < n; uid++ {
			degree[uid] = float64(g.Degree(NodeID(uid))) / float64(n-1)
		}
	}

	betweenness := g.betweenness()

	var closeness []float64
	if g.IsConnected() && n > 0 {
		closeness = make([]float64, n)
		for uid := 0; uid < n; uid++ {
			sum := 0
			for _, d := range g.ShortestPathLengths(NodeID(uid)) {
				sum += d
			}
			if sum > 0 {
				closeness[uid] = float64(n-1) / float64(sum)
			}
		}
	}

	pagerank := g.PageRank(damping)

	rows := make([]CentralityRow, 0, len(users))
	for _, user := range users {
		row := CentralityRow{User: user}
		if uid, ok := g.uids[user]; ok {
			row.Degree = degree[uid]
			row.Betweenness = betweenness[uid]
			row.PageRank = pagerank[uid]
			if closeness != nil {
				c := closeness[uid]
				row.Closeness = &c
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// betweenness implements Brandes' algorithm for unweighted graphs over
// the undirected view, normalized by 1/((n-1)(n-2)) as is conventional.
func (g *Graph) betweenness() []float64 {
	n := len(g.users)
	bc := make([]float64, n)
	if n <= 2 {
		return bc
	}

	dist := make([]int, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	preds := make([][]NodeID, n)
	stack := make([]NodeID, 0, n)
	queue := make([]NodeID, 0, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			dist[i] = -1
			sigma[i] = 0
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		stack = stack[:0]
		queue = queue[:0]

		src := NodeID(s)
		dist[src] = 0
		sigma[src] = 1
		queue = append(queue, src)

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.und[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != src {
				bc[w] += delta[w]
			}
		}
	}

	scale := 1.0 / (float64(n-1) * float64(n-2))
	for i := range bc {
		bc[i] *= scale
	}
	return bc
}

// PageRank runs power iteration over the directed edges. Dangling
// nodes redistribute their mass uniformly. The result sums to 1 for
// any non-empty graph.
func (g *Graph) PageRank(damping float64) []float64 {
	n := len(g.users)
	if n == 0 {
		return nil
	}
	pr := make([]float64, n)
	next := make([]float64, n)
	for i := range pr {
		pr[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < pagerankMaxIter; iter++ {
		danglingSum := 0.0
		for uid := 0; uid < n; uid++ {
			if len(g.out[uid]) == 0 {
				danglingSum += pr[uid]
			}
		}
		base := (1.0-damping)/float64(n) + damping*danglingSum/float64(n)
		for i := range next {
			next[i] = base
		}
		for uid := 0; uid < n; uid++ {
			if outDeg := len(g.out[uid]); outDeg > 0 {
				share := damping * pr[uid] / float64(outDeg)
				for _, t := range g.out[uid] {
					next[t] += share
				}
			}
		}

		diff := 0.0
		for i := range pr {
			d := next[i] - pr[i]
			if d < 0 {
				d = -d
			}
			diff += d
		}
		pr, next = next, pr
		if diff < pagerankTol*float64(n) {
			break
		}
	}
	return pr
}
