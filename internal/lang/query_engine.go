package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// queryMatch is one query match's captures, keyed by capture name. This
// mirrors the teacher's tree-sitter query idiom (parser_language_setup.go):
// one .scm-style query per language, captures grouped by a ".name" suffix
// convention, matches driven by a QueryCursor.
type queryMatch struct {
	primary *tree_sitter.Node
	names   map[string]*tree_sitter.Node
}

// runQuery executes a tree-sitter query against root and groups each match's
// captures by name, the same shape extractBasicSymbolsStringRef builds in
// the teacher before dispatching on capture name.
func runQuery(language *tree_sitter.Language, queryStr string, root *tree_sitter.Node, source []byte) []queryMatch {
	query, err := tree_sitter.NewQuery(language, queryStr)
	if query == nil || err != nil {
		return nil
	}
	defer query.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, *root, source)

	var out []queryMatch
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		qm := queryMatch{names: make(map[string]*tree_sitter.Node)}
		for _, c := range m.Captures {
			name := captureNames[c.Index]
			node := c.Node
			if strings.Contains(name, ".") {
				qm.names[name] = &node
			} else if qm.primary == nil {
				qm.primary = &node
			}
		}
		out = append(out, qm)
	}
	return out
}

// findCallNodes walks the tree collecting every node whose kind is in
// callKinds, used by the generic reference extractor shared by the
// query-driven languages (Go, Python, Rust, Java, C#, C++, PHP, Apex).
func findCallNodes(node *tree_sitter.Node, callKinds map[string]bool, out *[]*tree_sitter.Node) {
	if callKinds[node.Kind()] {
		n := *node
		*out = append(*out, &n)
	}
	for _, c := range children(node) {
		findCallNodes(c, callKinds, out)
	}
}

func walkAll(node *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	visit(node)
	for _, c := range children(node) {
		walkAll(c, visit)
	}
}
