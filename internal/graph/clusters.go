package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/surgebase/porter2"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// DetectCommunities runs Louvain modularity maximization on the undirected
// projection of the graph, with a fixed seed for determinism (spec §4.5,
// ported from original_source's graph/clusters.py detect_clusters, which
// itself prefers nx.community.louvain_communities and falls back to
// greedy_modularity_communities). No graph library in the corpus provides
// either algorithm (see the package doc comment in graph.go), so both are
// implemented here; Louvain is tried to local-optimum convergence and
// greedyModularity is the fallback whenever Louvain produces at most one
// community for a graph of more than one node.
func (g *Graph) DetectCommunities(seed int64) map[int64]int {
	if g.Len() == 0 {
		return nil
	}
	communities := g.louvain(seed)
	if len(communities) <= 1 && g.Len() > 1 {
		communities = g.greedyModularity()
	}

	assign := make(map[int64]int, g.Len())
	for ci, members := range communities {
		for _, id := range members {
			assign[id] = ci
		}
	}
	return assign
}

// louvain runs the local-move phase of the Louvain heuristic: each node, in
// a seed-derived order, moves to the neighboring community with the best
// modularity gain, repeated until a pass moves no node (at most 50 passes).
// Communities are not aggregated into super-nodes between passes.
func (g *Graph) louvain(seed int64) [][]int64 {
	ids := g.NodeIDs()
	n := len(ids)
	if n == 0 {
		return nil
	}

	nodeIndex := make(map[int64]int, n)
	for i, id := range ids {
		nodeIndex[id] = i
	}

	// Undirected weighted adjacency for modularity purposes.
	adj := make([]map[int]float64, n)
	degree := make([]float64, n)
	var totalWeight float64
	for i, id := range ids {
		adj[i] = make(map[int]float64)
		for _, nb := range g.undirectedNeighbors(id) {
			j, ok := nodeIndex[nb]
			if !ok || j == i {
				continue
			}
			adj[i][j] += 1
			degree[i]++
			totalWeight++
		}
	}
	if totalWeight == 0 {
		// No edges at all: every node is its own singleton community.
		out := make([][]int64, n)
		for i, id := range ids {
			out[i] = []int64{id}
		}
		return out
	}
	m2 := totalWeight // sum of degrees == 2*edges for undirected counting above

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}
	commDegree := make([]float64, n)
	copy(commDegree, degree)

	// Deterministic move order derived from the seed, stable across runs.
	moveOrder := make([]int, n)
	for i := range moveOrder {
		moveOrder[i] = i
	}
	rngShuffle(moveOrder, seed)

	improved := true
	for pass := 0; improved && pass < 50; pass++ {
		improved = false
		for _, i := range moveOrder {
			currentComm := community[i]
			neighborComms := map[int]float64{}
			for j, w := range adj[i] {
				neighborComms[community[j]] += w
			}

			commDegree[currentComm] -= degree[i]
			bestComm := currentComm
			bestGain := 0.0
			for c, wIn := range neighborComms {
				gain := wIn - commDegree[c]*degree[i]/m2
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}
			commDegree[bestComm] += degree[i]
			if bestComm != currentComm {
				community[i] = bestComm
				improved = true
			}
		}
	}

	grouped := make(map[int][]int64)
	for i, c := range community {
		grouped[c] = append(grouped[c], ids[i])
	}
	out := make([][]int64, 0, len(grouped))
	for _, members := range grouped {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// rngShuffle performs a deterministic Fisher-Yates shuffle driven by a
// simple linear-congruential sequence seeded by seed, avoiding a
// math/rand dependency on process-global state for cross-run determinism.
func rngShuffle(order []int, seed int64) {
	state := uint64(seed) | 1
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state
	}
	for i := len(order) - 1; i > 0; i-- {
		j := int(next() % uint64(i+1))
		order[i], order[j] = order[j], order[i]
	}
}

// greedyModularity starts from singleton communities and repeatedly merges
// the first pair of communities joined by an edge of the undirected
// projection, until no two communities are adjacent. No modularity gain is
// computed, so the result is the graph's connected components.
func (g *Graph) greedyModularity() [][]int64 {
	ids := g.NodeIDs()
	communities := make([][]int64, len(ids))
	for i, id := range ids {
		communities[i] = []int64{id}
	}

	adjacent := func(a, b []int64) bool {
		bSet := make(map[int64]bool, len(b))
		for _, id := range b {
			bSet[id] = true
		}
		for _, id := range a {
			for _, nb := range g.undirectedNeighbors(id) {
				if bSet[nb] {
					return true
				}
			}
		}
		return false
	}

	for {
		bestI, bestJ := -1, -1
		for i := 0; i < len(communities); i++ {
			for j := i + 1; j < len(communities); j++ {
				if adjacent(communities[i], communities[j]) {
					bestI, bestJ = i, j
					break
				}
			}
			if bestI >= 0 {
				break
			}
		}
		if bestI < 0 {
			break
		}
		merged := append(append([]int64{}, communities[bestI]...), communities[bestJ]...)
		var next [][]int64
		for k, c := range communities {
			if k == bestI || k == bestJ {
				continue
			}
			next = append(next, c)
		}
		next = append(next, merged)
		communities = next
	}
	return communities
}

// ClusterLabel resolves a human-readable label for one community (spec
// §4.5, ported from original_source's graph/clusters.py label_clusters):
// mega-communities (>100 symbols or >40% of the graph) get a directory
// distribution string; otherwise the highest-PageRank architectural anchor
// (class/struct/interface/enum/trait/module) wins, falling back to the
// highest-PageRank symbol of any kind, then the majority directory name.
func ClusterLabel(members []model.Symbol, filePaths map[int64]string, metrics map[int64]*Metrics, totalGraphSize int) string {
	if len(members) == 0 {
		return ""
	}
	dirCounts := map[string]int{}
	for _, s := range members {
		dirCounts[dirOf(filePaths[s.FileID])]++
	}
	mostCommonDir, mostCommonCount := "", -1
	for d, c := range dirCounts {
		if c > mostCommonCount || (c == mostCommonCount && d < mostCommonDir) {
			mostCommonDir, mostCommonCount = d, c
		}
	}
	shortDir := shortName(mostCommonDir)

	isMega := len(members) > 100 || (totalGraphSize > 0 && len(members) > int(float64(totalGraphSize)*0.4))
	if isMega && len(dirCounts) > 1 {
		type dc struct {
			dir   string
			count int
		}
		// Directories whose last path segment stems the same (handler vs
		// handlers, util vs utils) are the same logical grouping; merge
		// their counts so the percentage split isn't artificially diluted.
		byStem := map[string]*dc{}
		var order []string
		for d, c := range dirCounts {
			key := stemKey(shortName(d))
			if existing, ok := byStem[key]; ok {
				existing.count += c
				if d < existing.dir {
					existing.dir = d
				}
				continue
			}
			byStem[key] = &dc{dir: d, count: c}
			order = append(order, key)
		}
		var sorted []dc
		for _, key := range order {
			sorted = append(sorted, *byStem[key])
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count > sorted[j].count
			}
			return sorted[i].dir < sorted[j].dir
		})
		if len(sorted) > 3 {
			sorted = sorted[:3]
		}
		var parts []string
		for _, e := range sorted {
			pct := float64(e.count) * 100 / float64(len(members))
			parts = append(parts, fmt.Sprintf("%s %.0f%%", shortName(e.dir), pct))
		}
		return strings.Join(parts, " + ")
	}

	bestName, bestPR := "", -1.0
	for _, s := range members {
		if !model.AnchorKinds[s.Kind] {
			continue
		}
		pr := 0.0
		if m, ok := metrics[s.ID]; ok {
			pr = m.PageRank
		}
		if pr > bestPR {
			bestPR, bestName = pr, s.Name
		}
	}
	if bestName == "" {
		bestPR = -1
		for _, s := range members {
			pr := 0.0
			if m, ok := metrics[s.ID]; ok {
				pr = m.PageRank
			}
			if pr > bestPR {
				bestPR, bestName = pr, s.Name
			}
		}
	}

	switch {
	case bestName != "" && shortDir != "":
		return shortDir + "/" + bestName
	case bestName != "":
		return bestName
	case shortDir != "":
		return shortDir
	default:
		return "cluster"
	}
}

func dirOf(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return ""
}

func shortName(dir string) string {
	dir = strings.TrimSuffix(dir, "/")
	if idx := strings.LastIndexByte(dir, '/'); idx >= 0 {
		return dir[idx+1:]
	}
	return dir
}

// stemKey reduces a short directory name to its word stem (porter2), so
// "handler" and "handlers" group under the same mega-cluster label bucket.
func stemKey(name string) string {
	return porter2.Stem(strings.ToLower(name))
}
