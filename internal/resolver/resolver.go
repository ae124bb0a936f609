// Package resolver turns the transient Reference records produced by the
// lang extractors into concrete Symbol-to-Symbol Edges (spec §4.4). It never
// touches the store directly: it operates purely on in-memory slices so the
// orchestrator can run it once per full index and once per incremental
// re-extraction pass.
package resolver

import (
	"path"
	"sort"
	"strings"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// symbolIndex groups every known symbol several ways for the lookup
// strategies below; it is built once per resolution run.
type symbolIndex struct {
	byName      map[string][]model.Symbol
	byQualified map[string][]model.Symbol
	byFile      map[string][]model.Symbol // sorted by LineStart
	filePath    map[int64]string          // symbol ID -> owning file path
}

func buildIndex(symbols []model.Symbol, fileByID map[int64]string) *symbolIndex {
	idx := &symbolIndex{
		byName:      make(map[string][]model.Symbol),
		byQualified: make(map[string][]model.Symbol),
		byFile:      make(map[string][]model.Symbol),
		filePath:    make(map[int64]string),
	}
	for _, sym := range symbols {
		fp := fileByID[sym.FileID]
		idx.filePath[sym.ID] = fp
		idx.byName[sym.Name] = append(idx.byName[sym.Name], sym)
		if sym.QualifiedName != "" {
			idx.byQualified[sym.QualifiedName] = append(idx.byQualified[sym.QualifiedName], sym)
		}
		if fp != "" {
			idx.byFile[fp] = append(idx.byFile[fp], sym)
		}
	}
	for fp := range idx.byFile {
		list := idx.byFile[fp]
		sort.SliceStable(list, func(i, j int) bool { return list[i].LineStart < list[j].LineStart })
		idx.byFile[fp] = list
	}
	return idx
}

// Resolve converts references into edges (spec §4.4). fileByID maps a
// file's store ID to its repo-relative path; it is needed because
// Reference.SourceFile/symbols only carry file IDs at the store boundary,
// but resolution itself is path-keyed (mirrors the locality heuristics the
// teacher's corpus and original_source both key off directory/file paths).
func Resolve(references []model.Reference, symbols []model.Symbol, fileByID map[int64]string) []model.Edge {
	idx := buildIndex(symbols, fileByID)
	importMap := buildImportMap(references)

	type edgeKey struct {
		src, tgt int64
		kind     model.RefKind
	}
	seen := make(map[edgeKey]bool)
	var edges []model.Edge

	for _, ref := range references {
		if ref.TargetName == "" {
			continue
		}

		sourceSym := bestMatch(ref.SourceName, ref.SourceFile, idx, "", "", nil)
		if sourceSym == nil {
			sourceSym = closestSymbol(ref.SourceFile, ref.Line, idx)
		}
		if sourceSym == nil {
			continue
		}

		sourceParent := parentScope(sourceSym.QualifiedName)

		targetSym := resolveTarget(ref, sourceSym, sourceParent, idx, importMap)
		if targetSym == nil {
			continue
		}

		if sourceSym.ID == targetSym.ID {
			continue
		}
		key := edgeKey{sourceSym.ID, targetSym.ID, ref.Kind}
		if seen[key] {
			continue
		}
		seen[key] = true

		edges = append(edges, model.Edge{
			SourceID: sourceSym.ID, TargetID: targetSym.ID, Kind: ref.Kind, Line: ref.Line,
		})
	}

	return edges
}

func resolveTarget(ref model.Reference, sourceSym *model.Symbol, sourceParent string, idx *symbolIndex, importMap map[[2]string]string) *model.Symbol {
	qnMatches := idx.byQualified[ref.TargetName]
	var targetSym *model.Symbol
	if len(qnMatches) == 1 {
		targetSym = &qnMatches[0]
	} else if len(qnMatches) > 1 {
		targetSym = bestMatch(ref.TargetName, ref.SourceFile, idx, string(ref.Kind), sourceParent, importMap)
	}

	if targetSym != nil && idx.filePath[targetSym.ID] != ref.SourceFile {
		candidates := idx.byName[ref.TargetName]
		if sym, ok := firstInFile(candidates, ref.SourceFile, idx); ok {
			targetSym = sym
		} else {
			sourceDir := path.Dir(ref.SourceFile)
			if sourceDir != "." && path.Dir(idx.filePath[targetSym.ID]) != sourceDir {
				if sym, ok := firstInDir(candidates, sourceDir, idx); ok {
					targetSym = sym
				}
			}
		}
	}

	if targetSym == nil {
		targetSym = bestMatch(ref.TargetName, ref.SourceFile, idx, string(ref.Kind), sourceParent, importMap)
	}
	return targetSym
}

func firstInFile(candidates []model.Symbol, file string, idx *symbolIndex) (*model.Symbol, bool) {
	for i, c := range candidates {
		if idx.filePath[c.ID] == file {
			return &candidates[i], true
		}
	}
	return nil, false
}

func firstInDir(candidates []model.Symbol, dir string, idx *symbolIndex) (*model.Symbol, bool) {
	for i, c := range candidates {
		if path.Dir(idx.filePath[c.ID]) == dir {
			return &candidates[i], true
		}
	}
	return nil, false
}

// parentScope derives the owning scope from a qualified name, e.g.
// "MyStruct::some_method" -> "MyStruct", "pkg.Type.Method" -> "pkg.Type".
func parentScope(qualifiedName string) string {
	if idx := strings.LastIndex(qualifiedName, "::"); idx >= 0 {
		return qualifiedName[:idx]
	}
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		return qualifiedName[:idx]
	}
	return ""
}

func buildImportMap(references []model.Reference) map[[2]string]string {
	m := make(map[[2]string]string)
	for _, ref := range references {
		if ref.Kind == model.RefImport && ref.ImportPath != "" && ref.SourceFile != "" && ref.TargetName != "" {
			m[[2]string{ref.SourceFile, ref.TargetName}] = ref.ImportPath
		}
	}
	return m
}

// bestMatch finds the best candidate for name, preferring locality: same
// file, then same directory, then import-path-aware matching, then any
// exported symbol, in that order (ported from original_source's
// relations.py _best_match).
func bestMatch(name, sourceFile string, idx *symbolIndex, refKind, sourceParent string, importMap map[[2]string]string) *model.Symbol {
	candidates := idx.byName[name]
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return &candidates[0]
	}

	if refKind == "call" && name != "" && isUpper(name[0]) {
		var classCandidates []model.Symbol
		for _, c := range candidates {
			if c.Kind == model.KindClass {
				classCandidates = append(classCandidates, c)
			}
		}
		if len(classCandidates) > 0 {
			if sym, ok := firstInFile(classCandidates, sourceFile, idx); ok {
				return sym
			}
			sourceDir := path.Dir(sourceFile)
			if sym, ok := firstInDir(classCandidates, sourceDir, idx); ok {
				return sym
			}
			return &classCandidates[0]
		}
	}

	var sameFile []model.Symbol
	for _, c := range candidates {
		if idx.filePath[c.ID] == sourceFile {
			sameFile = append(sameFile, c)
		}
	}
	if len(sameFile) == 1 {
		return &sameFile[0]
	}
	if len(sameFile) > 1 {
		if sourceParent != "" {
			for i, s := range sameFile {
				if strings.HasPrefix(s.QualifiedName, sourceParent+"::") || strings.HasPrefix(s.QualifiedName, sourceParent+".") {
					return &sameFile[i]
				}
			}
		}
		return &sameFile[0]
	}

	sourceDir := path.Dir(sourceFile)
	var sameDir []model.Symbol
	for _, c := range candidates {
		if path.Dir(idx.filePath[c.ID]) == sourceDir {
			sameDir = append(sameDir, c)
		}
	}
	if len(sameDir) > 0 {
		for i, s := range sameDir {
			if s.IsExported {
				return &sameDir[i]
			}
		}
		return &sameDir[0]
	}

	if importMap != nil {
		if impPath, ok := importMap[[2]string{sourceFile, name}]; ok && impPath != "" {
			matched := matchImportPath(impPath, candidates, idx)
			if len(matched) > 0 {
				for i, s := range matched {
					if s.IsExported {
						return &matched[i]
					}
				}
				return &matched[0]
			}
		}
	}

	for i, c := range candidates {
		if c.IsExported {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

var stripExts = []string{".ts", ".js", ".vue", ".tsx", ".jsx", ".py"}

func stripExt(p string) string {
	for _, ext := range stripExts {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

// matchImportPath filters candidates whose file path matches an import
// specifier: Salesforce @salesforce/* conventions, the Vue "@/" alias,
// relative prefixes, barrel-export directory prefixes, and extension
// stripping (ported from original_source's relations.py _match_import_path
// and _resolve_salesforce_import).
func matchImportPath(importPath string, candidates []model.Symbol, idx *symbolIndex) []model.Symbol {
	if importPath == "" {
		return nil
	}
	if sf := resolveSalesforceImport(importPath, candidates, idx); len(sf) > 0 {
		return sf
	}

	normalized := strings.ReplaceAll(importPath, "\\", "/")
	switch {
	case strings.HasPrefix(normalized, "@/"):
		normalized = "src/" + normalized[2:]
	case strings.HasPrefix(normalized, "./"):
		normalized = normalized[2:]
	}
	normalized = stripExt(normalized)

	var matched []model.Symbol
	for _, cand := range candidates {
		fp := strings.ReplaceAll(idx.filePath[cand.ID], "\\", "/")
		fpNoExt := stripExt(fp)
		switch {
		case strings.HasSuffix(fpNoExt, "/"+normalized) || fpNoExt == normalized:
			matched = append(matched, cand)
		case strings.HasPrefix(fp, normalized+"/") || strings.Contains(fp, "/"+normalized+"/"):
			matched = append(matched, cand)
		}
	}
	return matched
}

func resolveSalesforceImport(importPath string, candidates []model.Symbol, idx *symbolIndex) []model.Symbol {
	if !strings.HasPrefix(importPath, "@salesforce/") {
		return nil
	}
	switch {
	case strings.HasPrefix(importPath, "@salesforce/apex/"):
		apexRef := strings.TrimPrefix(importPath, "@salesforce/apex/")
		className := apexRef
		if idx2 := strings.IndexByte(apexRef, '.'); idx2 >= 0 {
			className = apexRef[:idx2]
		}
		var out []model.Symbol
		for _, c := range candidates {
			fp := idx.filePath[c.ID]
			if strings.HasSuffix(fp, "/"+className+".cls") || strings.HasSuffix(fp, "/"+className+".trigger") {
				out = append(out, c)
			}
		}
		return out
	case strings.HasPrefix(importPath, "@salesforce/schema/"):
		schemaRef := strings.TrimPrefix(importPath, "@salesforce/schema/")
		simple := schemaRef
		if idx2 := strings.LastIndexByte(schemaRef, '.'); idx2 >= 0 {
			simple = schemaRef[idx2+1:]
		}
		var out []model.Symbol
		for _, c := range candidates {
			if c.QualifiedName == schemaRef || c.Name == simple {
				out = append(out, c)
			}
		}
		return out
	case strings.HasPrefix(importPath, "@salesforce/label/"):
		labelRef := strings.TrimPrefix(importPath, "@salesforce/label/")
		labelRef = strings.TrimPrefix(labelRef, "c.")
		var out []model.Symbol
		for _, c := range candidates {
			if c.Name == labelRef {
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// closestSymbol finds the most-nested symbol containing a reference line,
// falling back to the first symbol in the file — used for top-level code
// such as Vue <script setup> or Python module scope (ported from
// original_source's relations.py _closest_symbol).
func closestSymbol(sourceFile string, refLine int, idx *symbolIndex) *model.Symbol {
	syms := idx.byFile[sourceFile]
	if len(syms) == 0 {
		return nil
	}
	if refLine == 0 {
		return &syms[0]
	}
	var containing *model.Symbol
	for i := range syms {
		s := &syms[i]
		if s.LineStart <= refLine && s.LineEnd >= refLine && s.LineEnd > 0 {
			containing = s
		}
	}
	if containing != nil {
		return containing
	}
	return &syms[0]
}

// BuildFileEdges aggregates resolved symbol edges into file-level edges
// (spec §4.4), skipping self-file edges (ported from original_source's
// relations.py build_file_edges).
func BuildFileEdges(edges []model.Edge, symbolFile map[int64]int64) []model.FileEdge {
	counts := make(map[[2]int64]int)
	for _, e := range edges {
		srcFile, ok1 := symbolFile[e.SourceID]
		tgtFile, ok2 := symbolFile[e.TargetID]
		if !ok1 || !ok2 || srcFile == tgtFile {
			continue
		}
		counts[[2]int64{srcFile, tgtFile}]++
	}
	fileEdges := make([]model.FileEdge, 0, len(counts))
	for k, count := range counts {
		fileEdges = append(fileEdges, model.FileEdge{
			SourceFileID: k[0], TargetFileID: k[1], Kind: "imports", SymbolCount: count,
		})
	}
	return fileEdges
}
