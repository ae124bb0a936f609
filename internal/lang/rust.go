package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var rustQuery = `
(impl_item
    body: (declaration_list
        (function_item name: (identifier) @method.name) @method))
(trait_item
    body: (declaration_list
        (function_item name: (identifier) @method.name) @method))
(function_item name: (identifier) @function.name) @function
(struct_item name: (type_identifier) @struct.name) @struct
(enum_item name: (type_identifier) @enum.name) @enum
(trait_item name: (type_identifier) @interface.name) @interface
(type_item name: (type_identifier) @type.name) @type
(use_declaration) @import
(mod_item name: (identifier) @module.name) @module
`

type rustExtractor struct{}

func rustLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) }

func (rustExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	matches := runQuery(rustLanguage(), rustQuery, root, source)

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
		case m.names["method.name"] != nil:
			add(m.names["method.name"], model.KindMethod, "fn", m.primary)
		case m.names["function.name"] != nil:
			add(m.names["function.name"], model.KindFunction, "fn", m.primary)
		case m.names["struct.name"] != nil:
			add(m.names["struct.name"], model.KindStruct, "struct", m.primary)
		case m.names["enum.name"] != nil:
			add(m.names["enum.name"], model.KindEnum, "enum", m.primary)
		case m.names["interface.name"] != nil:
			add(m.names["interface.name"], model.KindTrait, "trait", m.primary)
		case m.names["type.name"] != nil:
			add(m.names["type.name"], model.KindStruct, "type", m.primary)
		case m.names["module.name"] != nil:
			add(m.names["module.name"], model.KindModule, "mod", m.primary)
		}
	}
	return symbols
}

func (rustExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	matches := runQuery(rustLanguage(), rustQuery, root, source)
	for _, m := range matches {
		if m.primary.Kind() == "use_declaration" {
			if arg := m.primary.Child(1); arg != nil {
				path := nodeText(arg, source)
				refs = append(refs, model.Reference{TargetName: lastDotSegment(rustLastSegment(path)), Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
			}
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
		} else if funcNode.Kind() == "scoped_identifier" {
			if field := funcNode.ChildByFieldName("name"); field != nil {
				name = nodeText(field, source)
			}
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}

	var impls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"impl_item": true}, &impls)
	for _, impl := range impls {
		typeNode := impl.ChildByFieldName("type")
		traitNode := impl.ChildByFieldName("trait")
		if typeNode == nil || traitNode == nil {
			continue
		}
		refs = append(refs, model.Reference{TargetName: nodeText(traitNode, source), Kind: model.RefImplements, Line: line(impl), SourceName: nodeText(typeNode, source)})
	}
	return refs
}

func rustLastSegment(path string) string {
	// "std::collections::HashMap" or "crate::foo::{Bar, Baz}" -> last plain
	// segment; good enough for the common single-item use case.
	seg := path
	for i := len(seg) - 1; i >= 1; i-- {
		if seg[i-1] == ':' && seg[i] == ':' {
			seg = seg[i+1:]
			break
		}
	}
	return seg
}
