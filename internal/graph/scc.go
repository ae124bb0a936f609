package graph

import "sort"

// StronglyConnectedComponents runs Tarjan's algorithm and returns every
// component with at least minSize members, largest first, each sorted
// ascending internally (spec §4.5 cycle detection / determinism
// requirements, ported from original_source's graph/cycles.py find_cycles,
// which gets the same shape from networkx.strongly_connected_components).
func (g *Graph) StronglyConnectedComponents(minSize int) [][]int64 {
	t := &tarjan{
		graph:   g,
		index:   make(map[int64]int),
		lowlink: make(map[int64]int),
		onStack: make(map[int64]bool),
	}
	for _, id := range g.NodeIDs() {
		if _, visited := t.index[id]; !visited {
			t.strongConnect(id)
		}
	}

	var out [][]int64
	for _, comp := range t.components {
		if len(comp) >= minSize {
			sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
			out = append(out, comp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

type tarjan struct {
	graph      *Graph
	index      map[int64]int
	lowlink    map[int64]int
	onStack    map[int64]bool
	stack      []int64
	counter    int
	components [][]int64
}

func (t *tarjan) strongConnect(v int64) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, arc := range t.graph.out[v] {
		w := arc.To
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []int64
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}

// Condensation collapses each SCC (including singletons, spec §4.5: "every
// component is placed at one more than the maximum layer of its
// predecessors") into one component node and returns the component
// membership plus the condensed edge set.
func (g *Graph) Condensation() (compOf map[int64]int, components [][]int64, condEdges map[int][]int) {
	all := g.StronglyConnectedComponents(1)
	compOf = make(map[int64]int)
	for ci, comp := range all {
		for _, id := range comp {
			compOf[id] = ci
		}
	}
	condEdges = make(map[int][]int)
	seen := make(map[[2]int]bool)
	for _, id := range g.NodeIDs() {
		srcComp := compOf[id]
		for _, arc := range g.out[id] {
			tgtComp := compOf[arc.To]
			if srcComp == tgtComp {
				continue
			}
			key := [2]int{srcComp, tgtComp}
			if seen[key] {
				continue
			}
			seen[key] = true
			condEdges[srcComp] = append(condEdges[srcComp], tgtComp)
		}
	}
	return compOf, all, condEdges
}
