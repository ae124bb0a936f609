package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var cppQuery = `
(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
(class_specifier name: (type_identifier) @class.name) @class
(struct_specifier name: (type_identifier) @struct.name) @struct
(enum_specifier name: (type_identifier) @enum.name) @enum
(preproc_include) @import
(using_declaration) @import
`

type cppExtractor struct{}

func cppLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) }

func (cppExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	matches := runQuery(cppLanguage(), cppQuery, tree.RootNode(), source)
	var symbols []model.Symbol
	add := func(n *tree_sitter.Node, kind model.SymbolKind, word string, primary *tree_sitter.Node) {
		name := nodeText(n, source)
		symbols = append(symbols, model.Symbol{
			Name: name, Kind: kind, QualifiedName: name, Signature: word + " " + name,
			LineStart: line(primary), LineEnd: endLine(primary), IsExported: true, Visibility: model.VisibilityPublic,
		})
	}
	for _, m := range matches {
		switch {
		case m.names["function.name"] != nil:
			add(m.names["function.name"], model.KindFunction, "function", m.primary)
		case m.names["class.name"] != nil:
			add(m.names["class.name"], model.KindClass, "class", m.primary)
		case m.names["struct.name"] != nil:
			add(m.names["struct.name"], model.KindStruct, "struct", m.primary)
		case m.names["enum.name"] != nil:
			add(m.names["enum.name"], model.KindEnum, "enum", m.primary)
		}
	}
	return symbols
}

func (cppExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	matches := runQuery(cppLanguage(), cppQuery, root, source)
	for _, m := range matches {
		if m.primary.Kind() == "preproc_include" {
			pathNode := m.primary.ChildByFieldName("path")
			if pathNode == nil {
				continue
			}
			path := trimQuotes(nodeText(pathNode, source))
			path = trimAngles(path)
			target := path
			if idx := lastSlash(path); idx >= 0 {
				target = path[idx+1:]
			}
			refs = append(refs, model.Reference{TargetName: target, Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
		}
	}

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"call_expression": true}, &calls)
	for _, call := range calls {
		funcNode := call.ChildByFieldName("function")
		if funcNode == nil {
			continue
		}
		name := nodeText(funcNode, source)
		if funcNode.Kind() == "field_expression" {
			if field := funcNode.ChildByFieldName("field"); field != nil {
				name = nodeText(field, source)
			}
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}

	var classes []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"class_specifier": true}, &classes)
	for _, cls := range classes {
		nameNode := cls.ChildByFieldName("name")
		baseList := cls.ChildByFieldName("base_class_clause")
		if nameNode == nil || baseList == nil {
			continue
		}
		className := nodeText(nameNode, source)
		walkAll(baseList, func(n *tree_sitter.Node) {
			if n.Kind() == "type_identifier" {
				refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: model.RefInherits, Line: line(cls), SourceName: className})
			}
		})
	}
	return refs
}

func trimAngles(s string) string {
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1]
	}
	return s
}
