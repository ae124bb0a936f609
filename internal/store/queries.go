package store

import (
	"database/sql"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

const symbolColumns = `id, file_id, name, qualified_name, kind, signature,
	line_start, line_end, docstring, visibility, is_exported, COALESCE(parent_id, 0)`

func scanSymbol(row interface{ Scan(...any) error }) (model.Symbol, error) {
	var s model.Symbol
	var kind, vis string
	var exported int
	err := row.Scan(&s.ID, &s.FileID, &s.Name, &s.QualifiedName, &kind, &s.Signature,
		&s.LineStart, &s.LineEnd, &s.Docstring, &vis, &exported, &s.ParentID)
	s.Kind = model.SymbolKind(kind)
	s.Visibility = model.Visibility(vis)
	s.IsExported = exported != 0
	return s, err
}

func scanSymbolRows(rows *sql.Rows) ([]model.Symbol, error) {
	defer rows.Close()
	var out []model.Symbol
	for rows.Next() {
		s, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SymbolsByName returns every symbol with an exact name match, across files.
func (s *Store) SymbolsByName(name string) ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT `+symbolColumns+` FROM symbols WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	return scanSymbolRows(rows)
}

// SymbolByQualifiedName returns the (at most one expected) symbol matching a
// fully qualified name.
func (s *Store) SymbolByQualifiedName(qname string) (*model.Symbol, error) {
	row := s.db.QueryRow(`SELECT `+symbolColumns+` FROM symbols WHERE qualified_name = ? LIMIT 1`, qname)
	sym, err := scanSymbol(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &sym, nil
}

// SymbolsInFile returns every symbol declared in a file, source order.
func (s *Store) SymbolsInFile(fileID int64) ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT `+symbolColumns+` FROM symbols WHERE file_id = ? ORDER BY line_start`, fileID)
	if err != nil {
		return nil, err
	}
	return scanSymbolRows(rows)
}

// SymbolsInDirectory returns every symbol whose file path falls under a
// directory prefix, used by cluster/directory mismatch reporting (C.2).
func (s *Store) SymbolsInDirectory(dirPrefix string) ([]model.Symbol, error) {
	prefix := strings.TrimSuffix(dirPrefix, "/") + "/"
	rows, err := s.db.Query(`
		SELECT `+symbolColumns+` FROM symbols sym
		JOIN files f ON f.id = sym.file_id
		WHERE f.path LIKE ? || '%'`, prefix)
	if err != nil {
		return nil, err
	}
	return scanSymbolRows(rows)
}

// FuzzyFindSymbols ranks every known symbol name against query by Levenshtein
// similarity (go-edlib), returning the top n matches. Used as the last
// resort of the FindSymbolIDs fallback chain (spec supplement C.3).
func (s *Store) FuzzyFindSymbols(query string, n int) ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT `+symbolColumns+` FROM symbols`)
	if err != nil {
		return nil, err
	}
	all, err := scanSymbolRows(rows)
	if err != nil {
		return nil, err
	}
	type scored struct {
		sym   model.Symbol
		score float32
	}
	scoredSyms := make([]scored, 0, len(all))
	for _, sym := range all {
		sim, err := edlib.StringsSimilarity(strings.ToLower(query), strings.ToLower(sym.Name), edlib.Levenshtein)
		if err != nil {
			continue
		}
		scoredSyms = append(scoredSyms, scored{sym: sym, score: sim})
	}
	sort.Slice(scoredSyms, func(i, j int) bool { return scoredSyms[i].score > scoredSyms[j].score })
	if n > len(scoredSyms) {
		n = len(scoredSyms)
	}
	out := make([]model.Symbol, n)
	for i := 0; i < n; i++ {
		out[i] = scoredSyms[i].sym
	}
	return out, nil
}

// FindSymbolIDs implements the lookup fallback chain (spec supplement C.3):
// exact qualified name, then exact simple name (possibly several hits),
// then fuzzy similarity as a last resort.
func (s *Store) FindSymbolIDs(query string) ([]model.Symbol, error) {
	if sym, err := s.SymbolByQualifiedName(query); err != nil {
		return nil, err
	} else if sym != nil {
		return []model.Symbol{*sym}, nil
	}
	if byName, err := s.SymbolsByName(query); err != nil {
		return nil, err
	} else if len(byName) > 0 {
		return byName, nil
	}
	return s.FuzzyFindSymbols(query, 5)
}

// Callers returns edges terminating at symbolID.
func (s *Store) Callers(symbolID int64) ([]model.Edge, error) {
	return s.edgesBy(`target_id = ?`, symbolID)
}

// Callees returns edges originating at symbolID.
func (s *Store) Callees(symbolID int64) ([]model.Edge, error) {
	return s.edgesBy(`source_id = ?`, symbolID)
}

func (s *Store) edgesBy(where string, arg int64) ([]model.Edge, error) {
	rows, err := s.db.Query(`SELECT id, source_id, target_id, kind, line FROM edges WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Edge
	for rows.Next() {
		var e model.Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &kind, &e.Line); err != nil {
			return nil, err
		}
		e.Kind = model.RefKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Importers returns file edges whose target is fileID (files that import it).
func (s *Store) Importers(fileID int64) ([]model.FileEdge, error) {
	return s.fileEdgesBy(`target_file_id = ?`, fileID)
}

// Importees returns file edges whose source is fileID (files it imports).
func (s *Store) Importees(fileID int64) ([]model.FileEdge, error) {
	return s.fileEdgesBy(`source_file_id = ?`, fileID)
}

func (s *Store) fileEdgesBy(where string, arg int64) ([]model.FileEdge, error) {
	rows, err := s.db.Query(`SELECT source_file_id, target_file_id, kind, symbol_count FROM file_edges WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FileEdge
	for rows.Next() {
		var fe model.FileEdge
		if err := rows.Scan(&fe.SourceFileID, &fe.TargetFileID, &fe.Kind, &fe.SymbolCount); err != nil {
			return nil, err
		}
		out = append(out, fe)
	}
	return out, rows.Err()
}

// MetricSort is the closed set of rankable centrality columns.
type MetricSort string

const (
	SortPageRank    MetricSort = "pagerank"
	SortBetweenness MetricSort = "betweenness"
	SortInDegree    MetricSort = "in_degree"
	SortOutDegree   MetricSort = "out_degree"
)

// TopByMetric returns the n symbols (joined with their metrics) ranked
// highest by the given column.
func (s *Store) TopByMetric(sortBy MetricSort, n int) ([]model.Symbol, []model.GraphMetrics, error) {
	col := string(sortBy)
	switch sortBy {
	case SortPageRank, SortBetweenness, SortInDegree, SortOutDegree:
	default:
		return nil, nil, fmt.Errorf("unknown metric sort %q", sortBy)
	}
	query := fmt.Sprintf(`
		SELECT %s, gm.in_degree, gm.out_degree, gm.betweenness, gm.pagerank
		FROM graph_metrics gm
		JOIN symbols sym ON sym.id = gm.symbol_id
		ORDER BY gm.%s DESC
		LIMIT ?`, strings.Replace(symbolColumns, "id,", "sym.id,", 1), col)
	rows, err := s.db.Query(query, n)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var syms []model.Symbol
	var metrics []model.GraphMetrics
	for rows.Next() {
		var sym model.Symbol
		var kind, vis string
		var exported int
		var gm model.GraphMetrics
		err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &kind, &sym.Signature,
			&sym.LineStart, &sym.LineEnd, &sym.Docstring, &vis, &exported, &sym.ParentID,
			&gm.InDegree, &gm.OutDegree, &gm.Betweenness, &gm.PageRank)
		if err != nil {
			return nil, nil, err
		}
		sym.Kind = model.SymbolKind(kind)
		sym.Visibility = model.Visibility(vis)
		sym.IsExported = exported != 0
		gm.SymbolID = sym.ID
		syms = append(syms, sym)
		metrics = append(metrics, gm)
	}
	return syms, metrics, rows.Err()
}

// ClusterMembers returns every symbol assigned to a cluster id.
func (s *Store) ClusterMembers(clusterID int) ([]model.Symbol, error) {
	rows, err := s.db.Query(`
		SELECT `+strings.Replace(symbolColumns, "id,", "sym.id,", 1)+`
		FROM symbols sym JOIN clusters c ON c.symbol_id = sym.id
		WHERE c.cluster_id = ?`, clusterID)
	if err != nil {
		return nil, err
	}
	return scanSymbolRows(rows)
}

// DirMismatch reports a cluster whose membership spans more directories than
// its dominant directory accounts for (spec supplement C.2).
type DirMismatch struct {
	ClusterID     int
	ClusterLabel  string
	DominantDir   string
	DominantShare float64
	TotalMembers  int
}

// ClusterDirectoryMismatches flags clusters whose members are not
// concentrated in one directory, suggesting an architectural seam that
// doesn't match the on-disk layout.
func (s *Store) ClusterDirectoryMismatches(minMembers int, maxDominantShare float64) ([]DirMismatch, error) {
	rows, err := s.db.Query(`
		SELECT c.cluster_id, c.cluster_label, f.path
		FROM clusters c
		JOIN symbols sym ON sym.id = c.symbol_id
		JOIN files f ON f.id = sym.file_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dirCounts := make(map[int]map[string]int)
	labels := make(map[int]string)
	for rows.Next() {
		var clusterID int
		var label, filePath string
		if err := rows.Scan(&clusterID, &label, &filePath); err != nil {
			return nil, err
		}
		labels[clusterID] = label
		dir := path.Dir(filePath)
		if dirCounts[clusterID] == nil {
			dirCounts[clusterID] = make(map[string]int)
		}
		dirCounts[clusterID][dir]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []DirMismatch
	for clusterID, counts := range dirCounts {
		total := 0
		bestDir, bestCount := "", 0
		for dir, c := range counts {
			total += c
			if c > bestCount {
				bestDir, bestCount = dir, c
			}
		}
		if total < minMembers {
			continue
		}
		share := float64(bestCount) / float64(total)
		if share < maxDominantShare {
			out = append(out, DirMismatch{
				ClusterID: clusterID, ClusterLabel: labels[clusterID],
				DominantDir: bestDir, DominantShare: share, TotalMembers: total,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DominantShare < out[j].DominantShare })
	return out, nil
}

// CycleMember is one symbol within a reported cycle, annotated with its
// owning file path (spec §4.5, ported from original_source's
// graph/cycles.py format_cycles).
type CycleMember struct {
	model.Symbol
	FilePath string
}

// Cycle is one strongly-connected component of size >= 2, annotated for
// presentation.
type Cycle struct {
	Members []CycleMember
	Files   []string
}

// HydrateCycles attaches symbol/file metadata to the raw SCC node-ID lists
// graph.StronglyConnectedComponents returns, batching symbol lookups to
// stay under SQLite's bound-parameter limit the way the Python original
// batches in chunks of 500.
func (s *Store) HydrateCycles(sccs [][]int64) ([]Cycle, error) {
	idSet := map[int64]bool{}
	for _, comp := range sccs {
		for _, id := range comp {
			idSet[id] = true
		}
	}
	if len(idSet) == 0 {
		return nil, nil
	}
	lookup := make(map[int64]CycleMember, len(idSet))
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	const batchSize = 500
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for j, id := range batch {
			args[j] = id
		}
		rows, err := s.db.Query(`
			SELECT `+strings.Replace(symbolColumns, "id,", "sym.id,", 1)+`, f.path
			FROM symbols sym JOIN files f ON f.id = sym.file_id
			WHERE sym.id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var sym model.Symbol
			var kind, vis, filePath string
			var exported int
			err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &kind, &sym.Signature,
				&sym.LineStart, &sym.LineEnd, &sym.Docstring, &vis, &exported, &sym.ParentID, &filePath)
			if err != nil {
				rows.Close()
				return nil, err
			}
			sym.Kind = model.SymbolKind(kind)
			sym.Visibility = model.Visibility(vis)
			sym.IsExported = exported != 0
			lookup[sym.ID] = CycleMember{Symbol: sym, FilePath: filePath}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	out := make([]Cycle, 0, len(sccs))
	for _, comp := range sccs {
		c := Cycle{}
		fileSet := map[string]bool{}
		for _, id := range comp {
			if m, ok := lookup[id]; ok {
				c.Members = append(c.Members, m)
				fileSet[m.FilePath] = true
			}
		}
		for f := range fileSet {
			c.Files = append(c.Files, f)
		}
		sort.Strings(c.Files)
		out = append(out, c)
	}
	return out, nil
}

// PathNode is one hop of a formatted trace path (spec §6: "per-hop edge
// kinds"), ported from original_source's graph/pathfinding.py format_path.
type PathNode struct {
	model.Symbol
	FilePath string
}

// HydratePath attaches symbol/file metadata to a raw node-ID path,
// preserving path order.
func (s *Store) HydratePath(nodeIDs []int64) ([]PathNode, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(nodeIDs)), ",")
	args := make([]any, len(nodeIDs))
	for i, id := range nodeIDs {
		args[i] = id
	}
	rows, err := s.db.Query(`
		SELECT `+strings.Replace(symbolColumns, "id,", "sym.id,", 1)+`, f.path
		FROM symbols sym JOIN files f ON f.id = sym.file_id
		WHERE sym.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lookup := make(map[int64]PathNode, len(nodeIDs))
	for rows.Next() {
		var sym model.Symbol
		var kind, vis, filePath string
		var exported int
		err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &kind, &sym.Signature,
			&sym.LineStart, &sym.LineEnd, &sym.Docstring, &vis, &exported, &sym.ParentID, &filePath)
		if err != nil {
			return nil, err
		}
		sym.Kind = model.SymbolKind(kind)
		sym.Visibility = model.Visibility(vis)
		sym.IsExported = exported != 0
		lookup[sym.ID] = PathNode{Symbol: sym, FilePath: filePath}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]PathNode, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if n, ok := lookup[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}
