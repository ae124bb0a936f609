package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var phpQuery = `
(class_declaration name: (name) @class.name) @class
(interface_declaration name: (name) @interface.name) @interface
(trait_declaration name: (name) @trait.name) @trait
(enum_declaration name: (name) @enum.name) @enum
(function_definition name: (name) @function.name) @function
(method_declaration name: (name) @method.name) @method
(namespace_definition name: (namespace_name) @namespace.name) @namespace
(namespace_use_declaration) @import
`

type phpExtractor struct{}

func phpLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) }

func (phpExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	matches := runQuery(phpLanguage(), phpQuery, tree.RootNode(), source)
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
		case m.names["class.name"] != nil:
			add(m.names["class.name"], model.KindClass, "class", m.primary)
		case m.names["interface.name"] != nil:
			add(m.names["interface.name"], model.KindInterface, "interface", m.primary)
		case m.names["trait.name"] != nil:
			add(m.names["trait.name"], model.KindTrait, "trait", m.primary)
		case m.names["enum.name"] != nil:
			add(m.names["enum.name"], model.KindEnum, "enum", m.primary)
		case m.names["function.name"] != nil:
			add(m.names["function.name"], model.KindFunction, "function", m.primary)
		case m.names["method.name"] != nil:
			n := m.names["method.name"]
			name := nodeText(n, source)
			kind := model.KindMethod
			if name == "__construct" {
				kind = model.KindConstructor
			}
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: kind, QualifiedName: name, Signature: "function " + name + "()",
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: true, Visibility: model.VisibilityPublic,
			})
		case m.names["namespace.name"] != nil:
			add(m.names["namespace.name"], model.KindModule, "namespace", m.primary)
		}
	}
	return symbols
}

func (phpExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	matches := runQuery(phpLanguage(), phpQuery, root, source)
	for _, m := range matches {
		if m.primary.Kind() == "namespace_use_declaration" {
			walkAll(m.primary, func(n *tree_sitter.Node) {
				if n.Kind() == "qualified_name" || n.Kind() == "name" {
					refs = append(refs, model.Reference{TargetName: lastSlashOrBackslash(nodeText(n, source)), Kind: model.RefImport, Line: line(m.primary)})
				}
			})
		}
	}

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"function_call_expression": true, "member_call_expression": true, "scoped_call_expression": true}, &calls)
	for _, call := range calls {
		funcNode := call.ChildByFieldName("function")
		nameNode := call.ChildByFieldName("name")
		var name string
		switch {
		case nameNode != nil:
			name = nodeText(nameNode, source)
		case funcNode != nil:
			name = nodeText(funcNode, source)
		default:
			continue
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}

	var classes []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"class_declaration": true}, &classes)
	for _, cls := range classes {
		nameNode := cls.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		className := nodeText(nameNode, source)
		if base := cls.ChildByFieldName("base_clause"); base != nil {
			walkAll(base, func(n *tree_sitter.Node) {
				if n.Kind() == "name" {
					refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: model.RefInherits, Line: line(cls), SourceName: className})
				}
			})
		}
		if iface := cls.ChildByFieldName("interfaces"); iface != nil {
			walkAll(iface, func(n *tree_sitter.Node) {
				if n.Kind() == "name" {
					refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: model.RefImplements, Line: line(cls), SourceName: className})
				}
			})
		}
	}
	return refs
}

func lastSlashOrBackslash(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\\' || s[i] == '/' {
			return s[i+1:]
		}
	}
	return s
}
