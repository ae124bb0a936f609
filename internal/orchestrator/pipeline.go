package orchestrator

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/river-mounts/roam-code-sf/internal/config"
	"github.com/river-mounts/roam-code-sf/internal/errs"
	"github.com/river-mounts/roam-code-sf/internal/graph"
	"github.com/river-mounts/roam-code-sf/internal/model"
	"github.com/river-mounts/roam-code-sf/internal/resolver"
	"github.com/river-mounts/roam-code-sf/internal/store"
)

// clusterSeed fixes Louvain's move order for run-to-run determinism (spec
// §4.5).
const clusterSeed int64 = 42

var logger = log.New(os.Stderr, "[orchestrator] ", log.LstdFlags)

// RunOptions configures one indexing run.
type RunOptions struct {
	Force   bool
	Verbose bool
}

// RunResult summarizes a completed run for the final summary line (spec
// §7).
type RunResult struct {
	Added, Modified, Removed, Unchanged int
	Duration                            time.Duration
	Errors                              errs.RunSummary
}

func (r *RunResult) String() string {
	base := fmt.Sprintf("%d added, %d modified, %d removed, %d unchanged in %s",
		r.Added, r.Modified, r.Removed, r.Unchanged, r.Duration.Round(time.Millisecond))
	if r.Errors.Empty() {
		return base
	}
	return base + "; " + r.Errors.String()
}

// Run executes one full indexing pass against the project at cfg.Root,
// implementing spec §4.6's nine-step pipeline.
func Run(cfg *config.Config, opts RunOptions) (*RunResult, error) {
	start := time.Now()
	roamDir := filepath.Join(cfg.Root, ".roam")

	// Step 1: acquire the process lock.
	lock, err := store.AcquireLock(roamDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	dbPath := store.DBPath(cfg.Root)
	if opts.Force {
		if opts.Verbose {
			logger.Printf("force: removing %s", dbPath)
		}
		_ = os.Remove(dbPath)
	}

	st, err := store.Open(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	paths, err := Discover(cfg)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	// Step 2: classify every present path against prior (path, hash) pairs.
	existingHashes, err := st.ExistingFileHashes()
	if err != nil {
		return nil, fmt.Errorf("load existing hashes: %w", err)
	}
	var summary errs.RunSummary
	added, modified, removed, unchanged := classify(cfg.Root, paths, existingHashes, &summary)

	if opts.Verbose {
		logger.Printf("discovered %d files: %d added, %d modified, %d removed, %d unchanged",
			len(paths), len(added), len(modified), len(removed), len(unchanged))
	}

	// Step 3: delete modified and removed file rows; symbols and edges
	// cascade away with them.
	if err := st.WithTx(func(tx *sql.Tx) error {
		for _, p := range removed {
			if err := store.DeleteFileCascade(tx, p); err != nil {
				return fmt.Errorf("delete removed file %s: %w", p, err)
			}
		}
		for _, p := range modified {
			if err := store.DeleteFileCascade(tx, p); err != nil {
				return fmt.Errorf("delete modified file %s: %w", p, err)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Step 4: parse and extract added+modified files in parallel.
	changed := make([]string, 0, len(added)+len(modified))
	changed = append(changed, added...)
	changed = append(changed, modified...)
	changedResults := parseAndExtractAll(cfg, changed, &summary)

	// Step 5: when any file was modified, edges whose target lived in that
	// file's now-deleted symbols were cascaded away with it. Whenever the
	// edge set is cleared below (any file added, modified or removed),
	// re-extract references from every unchanged file too, then rebuild all
	// edges from the union, rather than trying to patch the edge set
	// incrementally.
	rebuildAllEdges := len(modified) > 0 || len(removed) > 0
	var unchangedRefs []model.Reference
	if rebuildAllEdges || len(changedResults) > 0 {
		unchangedResults := parseAndExtractAll(cfg, unchanged, &summary)
		for _, r := range unchangedResults {
			unchangedRefs = append(unchangedRefs, r.references...)
		}
	}

	// Insert file rows, symbols, and file-level complexity for every
	// changed file.
	if err := st.WithTx(func(tx *sql.Tx) error {
		for i := range changedResults {
			r := &changedResults[i]
			fileID, err := store.UpsertFile(tx, model.File{
				Path: r.path, Language: string(r.language), Hash: r.hash,
				MTime: time.Now(), LineCount: r.lineCount,
			})
			if err != nil {
				return fmt.Errorf("upsert file %s: %w", r.path, err)
			}
			r.fileID = fileID
			for j := range r.symbols {
				r.symbols[j].FileID = fileID
				id, err := store.InsertSymbol(tx, r.symbols[j])
				if err != nil {
					return fmt.Errorf("insert symbol %s in %s: %w", r.symbols[j].Name, r.path, err)
				}
				r.symbols[j].ID = id
			}
			if err := store.UpsertFileStats(tx, fileID, r.complexity); err != nil {
				return fmt.Errorf("upsert file stats %s: %w", r.path, err)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Step 6: resolve references into edges against the full, now-current
	// symbol table, then build file-level edges.
	allSymbols, err := st.AllSymbols()
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	allFiles, err := st.AllFiles()
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	fileByID := make(map[int64]string, len(allFiles))
	for _, f := range allFiles {
		fileByID[f.ID] = f.Path
	}

	var allRefs []model.Reference
	for _, r := range changedResults {
		allRefs = append(allRefs, r.references...)
	}
	allRefs = append(allRefs, unchangedRefs...)

	edges := resolver.Resolve(allRefs, allSymbols, fileByID)

	symbolFile := make(map[int64]int64, len(allSymbols))
	for _, s := range allSymbols {
		symbolFile[s.ID] = s.FileID
	}
	fileEdges := resolver.BuildFileEdges(edges, symbolFile)

	if err := st.WithTx(func(tx *sql.Tx) error {
		if rebuildAllEdges || len(changedResults) > 0 {
			if err := store.ClearEdges(tx); err != nil {
				return fmt.Errorf("clear edges: %w", err)
			}
		}
		if err := store.BatchInsertEdges(tx, edges); err != nil {
			return fmt.Errorf("insert edges: %w", err)
		}
		return store.BatchInsertFileEdges(tx, fileEdges)
	}); err != nil {
		return nil, err
	}

	// Step 7: build the in-memory graph and compute metrics.
	g := buildGraph(allSymbols, edges)
	metrics := g.ComputeMetrics()
	metricRows := make([]model.GraphMetrics, 0, len(metrics))
	for id, m := range metrics {
		metricRows = append(metricRows, model.GraphMetrics{
			SymbolID: id, InDegree: m.InDegree, OutDegree: m.OutDegree,
			Betweenness: m.Betweenness, PageRank: m.PageRank,
		})
	}

	// Step 8: detect communities, label them, store clusters.
	communities := g.DetectCommunities(clusterSeed)
	symbolsByID := make(map[int64]model.Symbol, len(allSymbols))
	for _, s := range allSymbols {
		symbolsByID[s.ID] = s
	}
	byCommunity := make(map[int][]model.Symbol)
	for id, c := range communities {
		byCommunity[c] = append(byCommunity[c], symbolsByID[id])
	}
	clusterIDs := make([]int, 0, len(byCommunity))
	for cid := range byCommunity {
		clusterIDs = append(clusterIDs, cid)
	}
	sort.Ints(clusterIDs)
	clusterRows := make([]model.Cluster, 0, len(communities))
	for _, cid := range clusterIDs {
		members := byCommunity[cid]
		label := graph.ClusterLabel(members, fileByID, metrics, g.Len())
		for _, m := range members {
			clusterRows = append(clusterRows, model.Cluster{SymbolID: m.ID, ClusterID: cid, ClusterLabel: label})
		}
	}

	if err := st.WithTx(func(tx *sql.Tx) error {
		if err := store.BatchInsertMetrics(tx, metricRows); err != nil {
			return fmt.Errorf("store metrics: %w", err)
		}
		return store.BatchInsertClusters(tx, clusterRows)
	}); err != nil {
		return nil, err
	}

	// Step 9: release the lock (deferred above).
	result := &RunResult{
		Added: len(added), Modified: len(modified), Removed: len(removed),
		Unchanged: len(unchanged), Duration: time.Since(start), Errors: summary,
	}
	logger.Printf("%s", result)
	return result, nil
}

// classify partitions every discovered path into added/modified/unchanged
// by comparing against the Store's prior (path, hash) pairs, and collects
// the paths that existed before but are no longer present as removed.
func classify(root string, paths []string, existingHashes map[string]uint64, summary *errs.RunSummary) (added, modified, removed, unchanged []string) {
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		present[p] = true
		data, err := os.ReadFile(filepath.Join(root, p))
		if err != nil {
			summary.Record(errs.ErrorTypeTransientIO)
			continue
		}
		hash := store.ContentHash(data)
		oldHash, existed := existingHashes[p]
		switch {
		case !existed:
			added = append(added, p)
		case oldHash != hash:
			modified = append(modified, p)
		default:
			unchanged = append(unchanged, p)
		}
	}
	for p := range existingHashes {
		if !present[p] {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(modified)
	sort.Strings(removed)
	sort.Strings(unchanged)
	return added, modified, removed, unchanged
}

func buildGraph(symbols []model.Symbol, edges []model.Edge) *graph.Graph {
	nodeIDs := make([]int64, len(symbols))
	for i, s := range symbols {
		nodeIDs[i] = s.ID
	}
	edgeInputs := make([]struct {
		Source, Target int64
		Kind           string
	}, len(edges))
	for i, e := range edges {
		edgeInputs[i].Source = e.SourceID
		edgeInputs[i].Target = e.TargetID
		edgeInputs[i].Kind = string(e.Kind)
	}
	return graph.New(nodeIDs, edgeInputs)
}
