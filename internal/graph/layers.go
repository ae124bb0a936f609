package graph

import "sort"

// LayerViolation is an edge whose source layer is strictly less than its
// target layer — a dependency pointing toward a higher, more abstract
// layer (spec §4.5, §8 example 5).
type LayerViolation struct {
	SourceID    int64
	TargetID    int64
	Kind        string
	SourceLayer int
	TargetLayer int
}

// Layers computes a topological layering: a node that depends on nothing
// (no outgoing edges once back edges are discounted) is layer 0; every
// other node is one more than the maximum layer of the nodes it depends on
// (spec §4.5) — so layer grows from foundational modules up toward the
// modules that call into them.
//
// The layering itself must be computed on an acyclic view of the graph: if
// a cycle's own edges were allowed to feed the max-of-successors recursion,
// every member would be pulled to the same layer (or, worse, a node with a
// single stray edge into an established hierarchy would inherit a layer
// far above where it belongs) and the very edges that should read as
// violations would instead silently define the layering. A DFS over the
// full graph marks exactly the edges that close a cycle — an edge into a
// node still on the current search path, the standard "back edge"
// characterization — and removing just those edges is always sufficient to
// make a directed graph acyclic. Layers are assigned on what remains; every
// original edge, including the discarded back edges, is then checked
// against that layering. An edge whose source layer is strictly less than
// its target layer — most conspicuously a back edge, a foundational symbol
// reaching back up into something built on top of it — is a violation.
func (g *Graph) Layers() (nodeLayer map[int64]int, violations []LayerViolation) {
	ids := g.NodeIDs() // already sorted ascending

	const (
		white = iota
		gray
		black
	)
	color := make(map[int64]int, len(ids))
	type edgeKey struct{ from, to int64 }
	backEdge := make(map[edgeKey]bool)

	var visit func(v int64)
	visit = func(v int64) {
		color[v] = gray
		for _, arc := range g.out[v] {
			switch color[arc.To] {
			case white:
				visit(arc.To)
			case gray:
				backEdge[edgeKey{v, arc.To}] = true
			}
		}
		color[v] = black
	}
	for _, id := range ids {
		if color[id] == white {
			visit(id)
		}
	}

	nodeLayer = make(map[int64]int, len(ids))
	var layerOf func(v int64) int
	layerOf = func(v int64) int {
		if l, done := nodeLayer[v]; done {
			return l
		}
		maxDepLayer := -1
		for _, arc := range g.out[v] {
			if backEdge[edgeKey{v, arc.To}] {
				continue
			}
			if l := layerOf(arc.To); l > maxDepLayer {
				maxDepLayer = l
			}
		}
		nodeLayer[v] = maxDepLayer + 1
		return nodeLayer[v]
	}
	for _, id := range ids {
		layerOf(id)
	}

	for _, id := range ids {
		for _, arc := range g.out[id] {
			if nodeLayer[id] < nodeLayer[arc.To] {
				violations = append(violations, LayerViolation{
					SourceID: id, TargetID: arc.To, Kind: arc.Kind,
					SourceLayer: nodeLayer[id], TargetLayer: nodeLayer[arc.To],
				})
			}
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].SourceID != violations[j].SourceID {
			return violations[i].SourceID < violations[j].SourceID
		}
		return violations[i].TargetID < violations[j].TargetID
	})
	return nodeLayer, violations
}
