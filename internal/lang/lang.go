// Package lang implements the per-language symbol and reference extractors
// dispatched by the orchestrator after a file parses (spec §4.3). Every
// extractor satisfies the same Extractor contract so the orchestrator can
// treat all languages uniformly.
package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/river-mounts/roam-code-sf/internal/model"
	"github.com/river-mounts/roam-code-sf/internal/parsing"
)

// Extractor is implemented once per language family. ExtractSymbols and
// ExtractReferences both receive the same parsed tree; they run as two
// separate passes because reference resolution needs every file's symbols
// already known (spec §4.3/§4.4).
type Extractor interface {
	ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol
	ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference
}

// For returns the Extractor registered for a parsing.Language, or nil if the
// language has no extractor (sfmeta and the SFC wrapper languages dispatch
// through their own path in the orchestrator, not this registry).
func For(language parsing.Language) Extractor {
	switch language {
	case parsing.LangJavaScript:
		return javascriptExtractor{}
	case parsing.LangTypeScript:
		return typescriptExtractor{}
	case parsing.LangGo:
		return goExtractor{}
	case parsing.LangPython:
		return pythonExtractor{}
	case parsing.LangRust:
		return rustExtractor{}
	case parsing.LangJava:
		return javaExtractor{}
	case parsing.LangApex:
		return apexExtractor{}
	case parsing.LangCSharp:
		return csharpExtractor{}
	case parsing.LangCPP:
		return cppExtractor{}
	case parsing.LangPHP:
		return phpExtractor{}
	case parsing.LangZig:
		return zigExtractor{}
	default:
		return nil
	}
}

// nodeText slices the original source by byte offsets, the idiom every
// tree-sitter consumer in the example pack uses instead of a dedicated
// "text" accessor.
func nodeText(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLine(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

func qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// children returns a node's direct children as a slice, since go-tree-sitter
// exposes them by index/count rather than as a ranged slice.
func children(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.ChildCount())
	out := make([]*tree_sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(uint(i)); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
