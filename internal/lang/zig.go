package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// zigQuery is the community-parser query from the teacher's
// setupCommunityParsers/setupZig: Zig has no dedicated "name" field the way
// the first-party grammars do, so a struct or union declaration is matched
// as a variable_declaration whose initializer is the container node.
var zigQuery = `
(function_declaration (identifier) @function.name) @function
(variable_declaration
  (identifier) @struct.name
  (struct_declaration) @struct)
(variable_declaration
  (identifier) @union.name
  (union_declaration) @union)
`

type zigExtractor struct{}

func zigLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) }

func (zigExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	matches := runQuery(zigLanguage(), zigQuery, root, source)

	var symbols []model.Symbol
	for _, m := range matches {
		switch {
		case m.names["function.name"] != nil:
			name := nodeText(m.names["function.name"], source)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindFunction, QualifiedName: name, Signature: "fn " + name,
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: true, Visibility: model.VisibilityPublic,
			})
		case m.names["struct.name"] != nil:
			name := nodeText(m.names["struct.name"], source)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindStruct, QualifiedName: name, Signature: "const " + name + " = struct",
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: true, Visibility: model.VisibilityPublic,
			})
		case m.names["union.name"] != nil:
			// Zig unions behave like tagged enums; tracked as KindEnum since the
			// graph has no dedicated union kind.
			name := nodeText(m.names["union.name"], source)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindEnum, QualifiedName: name, Signature: "const " + name + " = union",
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: true, Visibility: model.VisibilityPublic,
			})
		}
	}
	return symbols
}

func (zigExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"call_expression": true}, &calls)
	for _, call := range calls {
		funcNode := call.ChildByFieldName("function")
		if funcNode == nil {
			funcNode = call.Child(0)
		}
		if funcNode == nil {
			continue
		}
		refs = append(refs, model.Reference{TargetName: nodeText(funcNode, source), Kind: model.RefCall, Line: line(call)})
	}

	var imports []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"builtin_identifier": true}, &imports)
	for _, b := range imports {
		if nodeText(b, source) != "@import" {
			continue
		}
		parent := b.Parent()
		if parent == nil || parent.ChildCount() < 2 {
			continue
		}
		arg := parent.Child(1)
		path := nodeText(arg, source)
		refs = append(refs, model.Reference{TargetName: lastDotSegment(path), Kind: model.RefImport, Line: line(b), ImportPath: path})
	}
	return refs
}
