package graph

import (
	"container/heap"
	"sort"
)

// AnnotatedPath is one scored trace result (spec §4.5's path quality and
// coupling scoring).
type AnnotatedPath struct {
	NodeIDs  []int64
	EdgeKind []string // len == len(NodeIDs)-1, the kind of each hop
	Quality  float64
	Coupling string // strong/moderate/weak/structural, from this path's own hop kinds
}

var callLikeKinds = map[string]bool{"call": true, "uses": true, "uses_trait": true}

// FindPath finds the shortest weighted path from source to target,
// preferring call edges over import edges via the per-kind arc weights set
// in New (weightFor, spec §4.5). It tries the directed graph first, falling
// back to the undirected projection when no directed path exists — ported
// from original_source's graph/pathfinding.py find_path.
func (g *Graph) FindPath(source, target int64) []int64 {
	if !g.Has(source) || !g.Has(target) {
		return nil
	}
	if path := g.dijkstra(source, target, false); path != nil {
		return path
	}
	return g.dijkstra(source, target, true)
}

// FindKPaths returns up to k shortest simple paths via Yen's algorithm on
// the directed graph, falling back to a single undirected path when no
// directed path exists at all (ported from pathfinding.py find_k_paths).
func (g *Graph) FindKPaths(source, target int64, k int) []AnnotatedPath {
	if !g.Has(source) || !g.Has(target) {
		return nil
	}
	paths := g.yensKShortest(source, target, k, false)
	if len(paths) == 0 {
		if single := g.dijkstra(source, target, true); single != nil {
			paths = [][]int64{single}
		}
	}

	metrics := g.ComputeMetrics()
	annotated := make([]AnnotatedPath, 0, len(paths))
	for _, p := range paths {
		annotated = append(annotated, g.annotate(p, metrics))
	}
	sort.SliceStable(annotated, func(i, j int) bool {
		if annotated[i].Quality != annotated[j].Quality {
			return annotated[i].Quality > annotated[j].Quality
		}
		return len(annotated[i].NodeIDs) < len(annotated[j].NodeIDs)
	})
	return annotated
}

func (g *Graph) dijkstra(source, target int64, undirected bool) []int64 {
	dist := map[int64]float64{source: 0}
	prev := map[int64]int64{}
	visited := map[int64]bool{}

	pq := &pathHeap{{id: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pathHeapItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == target {
			break
		}
		neighbors := g.out[cur.id]
		if undirected {
			neighbors = g.undirectedArcs(cur.id)
		}
		for _, arc := range neighbors {
			if visited[arc.To] {
				continue
			}
			nd := cur.dist + arc.Weight
			if old, ok := dist[arc.To]; !ok || nd < old {
				dist[arc.To] = nd
				prev[arc.To] = cur.id
				heap.Push(pq, pathHeapItem{id: arc.To, dist: nd})
			}
		}
	}

	if _, ok := dist[target]; !ok {
		return nil
	}
	var path []int64
	for at := target; ; {
		path = append([]int64{at}, path...)
		if at == source {
			break
		}
		at = prev[at]
	}
	return path
}

// undirectedArcs merges outgoing and incoming arcs for the undirected
// fallback traversal.
func (g *Graph) undirectedArcs(id int64) []Arc {
	arcs := append([]Arc{}, g.out[id]...)
	for _, a := range g.in[id] {
		arcs = append(arcs, Arc{To: a.To, Kind: a.Kind, Weight: a.Weight})
	}
	return arcs
}

type pathHeapItem struct {
	id   int64
	dist float64
}

type pathHeap []pathHeapItem

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(pathHeapItem)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// yensKShortest returns up to k shortest loopless paths via Yen's
// algorithm, built on repeated Dijkstra calls with temporarily removed
// edges/nodes (ported from pathfinding.py find_k_paths' use of
// nx.shortest_simple_paths).
func (g *Graph) yensKShortest(source, target int64, k int, undirected bool) [][]int64 {
	first := g.dijkstra(source, target, undirected)
	if first == nil {
		return nil
	}
	paths := [][]int64{first}
	var candidates [][]int64

	for len(paths) < k {
		prevPath := paths[len(paths)-1]
		for i := 0; i < len(prevPath)-1; i++ {
			spurNode := prevPath[i]
			rootPath := append([]int64{}, prevPath[:i+1]...)

			removedArcs := map[int64][]Arc{}
			for _, p := range paths {
				if len(p) > i && pathsShareRoot(p, rootPath) {
					u := p[i]
					v := p[i+1]
					removedArcs[u] = append(removedArcs[u], Arc{To: v})
				}
			}

			removedNodes := map[int64]bool{}
			for _, n := range rootPath[:len(rootPath)-1] {
				removedNodes[n] = true
			}

			spurPath := g.dijkstraExcluding(spurNode, target, undirected, removedArcs, removedNodes)
			if spurPath == nil {
				continue
			}
			totalPath := append(append([]int64{}, rootPath[:len(rootPath)-1]...), spurPath...)
			if !containsPath(paths, totalPath) && !containsPath(candidates, totalPath) {
				candidates = append(candidates, totalPath)
			}
		}
		if len(candidates) == 0 {
			break
		}
		sort.Slice(candidates, func(i, j int) bool {
			return g.pathCost(candidates[i]) < g.pathCost(candidates[j])
		})
		paths = append(paths, candidates[0])
		candidates = candidates[1:]
	}
	return paths
}

func pathsShareRoot(p, root []int64) bool {
	if len(p) < len(root) {
		return false
	}
	for i, v := range root {
		if p[i] != v {
			return false
		}
	}
	return true
}

func containsPath(paths [][]int64, candidate []int64) bool {
	for _, p := range paths {
		if len(p) != len(candidate) {
			continue
		}
		match := true
		for i := range p {
			if p[i] != candidate[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (g *Graph) pathCost(path []int64) float64 {
	var cost float64
	for i := 0; i < len(path)-1; i++ {
		found := false
		for _, arc := range g.out[path[i]] {
			if arc.To == path[i+1] {
				cost += arc.Weight
				found = true
				break
			}
		}
		if !found {
			for _, arc := range g.in[path[i]] {
				if arc.To == path[i+1] {
					cost += arc.Weight
					break
				}
			}
		}
	}
	return cost
}

func (g *Graph) dijkstraExcluding(source, target int64, undirected bool, removedArcs map[int64][]Arc, removedNodes map[int64]bool) []int64 {
	dist := map[int64]float64{source: 0}
	prev := map[int64]int64{}
	visited := map[int64]bool{}

	pq := &pathHeap{{id: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pathHeapItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == target {
			break
		}
		neighbors := g.out[cur.id]
		if undirected {
			neighbors = g.undirectedArcs(cur.id)
		}
		for _, arc := range neighbors {
			if visited[arc.To] || removedNodes[arc.To] {
				continue
			}
			skip := false
			for _, removed := range removedArcs[cur.id] {
				if removed.To == arc.To {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			nd := cur.dist + arc.Weight
			if old, ok := dist[arc.To]; !ok || nd < old {
				dist[arc.To] = nd
				prev[arc.To] = cur.id
				heap.Push(pq, pathHeapItem{id: arc.To, dist: nd})
			}
		}
	}

	if _, ok := dist[target]; !ok {
		return nil
	}
	var path []int64
	for at := target; ; {
		path = append([]int64{at}, path...)
		if at == source {
			break
		}
		at = prev[at]
	}
	return path
}

// annotate scores a path by coupling ratio (0.7), directness (0.3), and a
// hub penalty for high-degree intermediate nodes (spec §4.5's exact
// weighting), and labels its coupling strength.
func (g *Graph) annotate(path []int64, metrics map[int64]*Metrics) AnnotatedPath {
	ap := AnnotatedPath{NodeIDs: path}
	if len(path) < 2 {
		ap.Quality = 1
		ap.Coupling = "structural"
		return ap
	}

	var callLike int
	kinds := make([]string, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		kind := g.hopKind(path[i], path[i+1])
		kinds = append(kinds, kind)
		if callLikeKinds[kind] {
			callLike++
		}
	}
	ap.EdgeKind = kinds

	hops := len(path) - 1
	couplingRatio := float64(callLike) / float64(hops)
	directness := 1 - 0.15*float64(hops-2)
	if directness < 0 {
		directness = 0
	}

	var hubPenalty float64
	for _, id := range path[1 : len(path)-1] {
		deg := g.Degree(id)
		if deg > 50 {
			penalty := 0.2 + float64(deg)/500
			if penalty > 0.5 {
				penalty = 0.5
			}
			hubPenalty += penalty
		}
	}

	ap.Quality = couplingRatio*0.7 + directness*0.3 - hubPenalty
	ap.Coupling = couplingLabel(kinds)
	return ap
}

func (g *Graph) hopKind(from, to int64) string {
	for _, arc := range g.out[from] {
		if arc.To == to {
			return arc.Kind
		}
	}
	for _, arc := range g.in[from] {
		if arc.To == to {
			return arc.Kind
		}
	}
	return "uses"
}

// couplingLabel picks the strongest coupling observed across a path's hops
// (spec §4.5: "strong (direct call chain), moderate (mixed call + import),
// weak (via imports/template), structural (file import)").
func couplingLabel(kinds []string) string {
	hasCall, hasImport, hasTemplateOrUses, allCall := false, false, false, len(kinds) > 0
	for _, k := range kinds {
		switch k {
		case "call":
			hasCall = true
		case "import":
			hasImport = true
			allCall = false
		case "template", "uses", "uses_trait":
			hasTemplateOrUses = true
			allCall = false
		default:
			allCall = false
		}
	}
	switch {
	case allCall:
		return "strong"
	case hasCall && hasImport:
		return "moderate"
	case hasCall:
		return "moderate"
	case hasTemplateOrUses || hasImport:
		return "weak"
	default:
		return "structural"
	}
}
