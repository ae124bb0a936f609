// Package graph builds the in-memory symbol graph overlay (spec §4.5): node
// degree/PageRank/betweenness, Louvain community detection, topological
// layering with violation detection, SCC-based cycle detection, and path
// finding.
//
// No library in the example corpus models a general-purpose directed graph
// (the teacher's own internal/core/universal_graph.go is an LRU-bounded
// symbol cache keyed by composite IDs, not a traversal/algorithms graph; no
// other pack repo imports gonum/graph, dominikbraun/graph or similar), so
// this package is a from-scratch adjacency-list implementation — the option
// spec.md §9 itself calls out ("a from-scratch implementation is feasible").
package graph

import "sort"

// Graph is a directed multigraph over symbol IDs, weighted by reference
// kind (spec §4.5's path-quality weighting).
type Graph struct {
	nodes map[int64]bool
	out   map[int64][]Arc
	in    map[int64][]Arc
}

// Arc is one directed edge annotated with the reference kind that produced
// it and a traversal weight (call edges are cheaper to traverse than
// imports, spec §4.5's trace weighting).
type Arc struct {
	To     int64
	Kind   string
	Weight float64
}

var edgeWeights = map[string]float64{
	"call": 1.0, "uses_trait": 1.0, "implements": 1.0, "inherits": 1.0,
	"uses": 1.0, "template": 1.0, "import": 1.1,
}

func weightFor(kind string) float64 {
	if w, ok := edgeWeights[kind]; ok {
		return w
	}
	return 2.0
}

// New builds a Graph from the resolved symbol edges (node IDs, kind).
func New(nodeIDs []int64, edges []struct {
	Source, Target int64
	Kind           string
}) *Graph {
	g := &Graph{
		nodes: make(map[int64]bool, len(nodeIDs)),
		out:   make(map[int64][]Arc),
		in:    make(map[int64][]Arc),
	}
	for _, id := range nodeIDs {
		g.nodes[id] = true
	}
	for _, e := range edges {
		g.nodes[e.Source] = true
		g.nodes[e.Target] = true
		arc := Arc{To: e.Target, Kind: e.Kind, Weight: weightFor(e.Kind)}
		g.out[e.Source] = append(g.out[e.Source], arc)
		g.in[e.Target] = append(g.in[e.Target], Arc{To: e.Source, Kind: e.Kind, Weight: arc.Weight})
	}
	return g
}

// NodeIDs returns every node in the graph, sorted ascending for determinism.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Graph) Out(id int64) []Arc { return g.out[id] }
func (g *Graph) In(id int64) []Arc  { return g.in[id] }
func (g *Graph) InDegree(id int64) int  { return len(g.in[id]) }
func (g *Graph) OutDegree(id int64) int { return len(g.out[id]) }
func (g *Graph) Degree(id int64) int    { return g.InDegree(id) + g.OutDegree(id) }
func (g *Graph) Has(id int64) bool      { return g.nodes[id] }
func (g *Graph) Len() int               { return len(g.nodes) }

// undirectedNeighbors merges in+out arcs for the undirected projection used
// by community detection and the undirected path-finding fallback.
func (g *Graph) undirectedNeighbors(id int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, a := range g.out[id] {
		if !seen[a.To] {
			seen[a.To] = true
			out = append(out, a.To)
		}
	}
	for _, a := range g.in[id] {
		if !seen[a.To] {
			seen[a.To] = true
			out = append(out, a.To)
		}
	}
	return out
}

// Metrics is the per-node derived-number bundle (spec §4.5).
type Metrics struct {
	InDegree    int
	OutDegree   int
	Betweenness float64
	PageRank    float64
}

// ComputeMetrics runs PageRank (damping 0.85, tolerance 1e-6, spec §9's
// Open Question resolution) and unnormalized-shortest-path-count
// betweenness for every node.
func (g *Graph) ComputeMetrics() map[int64]*Metrics {
	metrics := make(map[int64]*Metrics, len(g.nodes))
	for id := range g.nodes {
		metrics[id] = &Metrics{InDegree: g.InDegree(id), OutDegree: g.OutDegree(id)}
	}
	pr := g.pageRank(0.85, 1e-6, 100)
	for id, v := range pr {
		metrics[id].PageRank = v
	}
	bc := g.betweenness()
	for id, v := range bc {
		metrics[id].Betweenness = v
	}
	return metrics
}

func (g *Graph) pageRank(damping, tolerance float64, maxIter int) map[int64]float64 {
	n := len(g.nodes)
	if n == 0 {
		return nil
	}
	ids := g.NodeIDs()
	rank := make(map[int64]float64, n)
	base := 1.0 / float64(n)
	for _, id := range ids {
		rank[id] = base
	}
	danglingWeight := 1.0 / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		next := make(map[int64]float64, n)
		var danglingSum float64
		for _, id := range ids {
			if g.OutDegree(id) == 0 {
				danglingSum += rank[id]
			}
		}
		for _, id := range ids {
			next[id] = (1 - damping) * base
		}
		for _, id := range ids {
			outDeg := g.OutDegree(id)
			if outDeg == 0 {
				continue
			}
			share := damping * rank[id] / float64(outDeg)
			for _, arc := range g.out[id] {
				next[arc.To] += share
			}
		}
		for _, id := range ids {
			next[id] += damping * danglingSum * danglingWeight
		}

		var delta float64
		for _, id := range ids {
			d := next[id] - rank[id]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		rank = next
		if delta < tolerance {
			break
		}
	}
	return rank
}

// betweenness computes unnormalized shortest-path-count betweenness via
// Brandes' algorithm over the unweighted directed graph (spec §4.5:
// "unnormalized shortest-path count").
func (g *Graph) betweenness() map[int64]float64 {
	cb := make(map[int64]float64, len(g.nodes))
	ids := g.NodeIDs()
	for _, id := range ids {
		cb[id] = 0
	}

	for _, s := range ids {
		stack := []int64{}
		pred := make(map[int64][]int64)
		sigma := make(map[int64]float64, len(ids))
		dist := make(map[int64]int, len(ids))
		for _, v := range ids {
			sigma[v] = 0
			dist[v] = -1
		}
		sigma[s] = 1
		dist[s] = 0
		queue := []int64{s}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, arc := range g.out[v] {
				w := arc.To
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[int64]float64, len(ids))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] != 0 {
					delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
				}
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}
	return cb
}

// BetweennessPercentile returns, for every node, the percentile (0-100) of
// its betweenness value within the non-zero population (spec §4.5:
// "downstream consumers compute percentiles (70th and 90th) over the
// non-zero betweenness population rather than using absolute values").
func BetweennessPercentile(metrics map[int64]*Metrics) map[int64]float64 {
	var nonZero []float64
	for _, m := range metrics {
		if m.Betweenness > 0 {
			nonZero = append(nonZero, m.Betweenness)
		}
	}
	sort.Float64s(nonZero)
	percentiles := make(map[int64]float64, len(metrics))
	for id, m := range metrics {
		if m.Betweenness <= 0 || len(nonZero) == 0 {
			percentiles[id] = 0
			continue
		}
		idx := sort.SearchFloat64s(nonZero, m.Betweenness)
		percentiles[id] = float64(idx) / float64(len(nonZero)) * 100
	}
	return percentiles
}

// BottleneckSeverity classifies a node's percentile as spec §9's glossary
// entry describes: a symbol with high betweenness centrality, severity
// assigned by percentile within the current graph.
func BottleneckSeverity(percentile float64) string {
	switch {
	case percentile >= 90:
		return "critical"
	case percentile >= 70:
		return "high"
	default:
		return "normal"
	}
}
