package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var javaQuery = `
(method_declaration name: (identifier) @method.name) @method
(constructor_declaration name: (identifier) @constructor.name) @constructor
(class_declaration name: (identifier) @class.name) @class
(record_declaration name: (identifier) @class.name) @class
(interface_declaration name: (identifier) @interface.name) @interface
(enum_declaration name: (identifier) @enum.name) @enum
(field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field
(import_declaration) @import
`

type javaExtractor struct{}

func javaLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) }

func extractJavaLike(language *tree_sitter.Language, query string, root *tree_sitter.Node, source []byte) []model.Symbol {
	matches := runQuery(language, query, root, source)
	var symbols []model.Symbol
	add := func(n *tree_sitter.Node, kind model.SymbolKind, word string, primary *tree_sitter.Node, exported bool) {
		name := nodeText(n, source)
		symbols = append(symbols, model.Symbol{
			Name: name, Kind: kind, QualifiedName: name, Signature: word + " " + name,
			LineStart: line(primary), LineEnd: endLine(primary), IsExported: exported,
			Visibility: javaVisibility(primary, source),
		})
	}
	for _, m := range matches {
		switch {
		case m.names["method.name"] != nil:
			add(m.names["method.name"], model.KindMethod, "method", m.primary, isJavaPublic(m.primary, source))
		case m.names["constructor.name"] != nil:
			add(m.names["constructor.name"], model.KindConstructor, "constructor", m.primary, isJavaPublic(m.primary, source))
		case m.names["class.name"] != nil:
			add(m.names["class.name"], model.KindClass, "class", m.primary, isJavaPublic(m.primary, source))
		case m.names["interface.name"] != nil:
			add(m.names["interface.name"], model.KindInterface, "interface", m.primary, isJavaPublic(m.primary, source))
		case m.names["enum.name"] != nil:
			add(m.names["enum.name"], model.KindEnum, "enum", m.primary, isJavaPublic(m.primary, source))
		case m.names["field.name"] != nil:
			add(m.names["field.name"], model.KindField, "field", m.primary, isJavaPublic(m.primary, source))
		case m.names["struct.name"] != nil:
			add(m.names["struct.name"], model.KindStruct, "struct", m.primary, true)
		case m.names["record.name"] != nil:
			add(m.names["record.name"], model.KindStruct, "record", m.primary, true)
		case m.names["property.name"] != nil:
			add(m.names["property.name"], model.KindProperty, "property", m.primary, true)
		case m.names["namespace.name"] != nil:
			add(m.names["namespace.name"], model.KindModule, "namespace", m.primary, true)
		case m.names["delegate.name"] != nil:
			add(m.names["delegate.name"], model.KindFunction, "delegate", m.primary, true)
		case m.names["event.name"] != nil:
			add(m.names["event.name"], model.KindField, "event", m.primary, true)
		}
	}
	return symbols
}

// isJavaPublic scans a declaration's modifiers for "public"; Java/C#
// members without an explicit modifier default to package-private, which
// the model folds into VisibilityPrivate.
func isJavaPublic(decl *tree_sitter.Node, source []byte) bool {
	for _, c := range children(decl) {
		if c.Kind() == "modifiers" {
			for _, mod := range children(c) {
				if nodeText(mod, source) == "public" {
					return true
				}
			}
		}
	}
	return false
}

func javaVisibility(decl *tree_sitter.Node, source []byte) model.Visibility {
	for _, c := range children(decl) {
		if c.Kind() != "modifiers" {
			continue
		}
		for _, mod := range children(c) {
			switch nodeText(mod, source) {
			case "public":
				return model.VisibilityPublic
			case "private":
				return model.VisibilityPrivate
			case "protected":
				return model.VisibilityProtected
			}
		}
	}
	return model.VisibilityPrivate
}

func (javaExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	return extractJavaLike(javaLanguage(), javaQuery, tree.RootNode(), source)
}

func (javaExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	return extractJavaLikeRefs(javaLanguage(), javaQuery, tree.RootNode(), source, "method_invocation", "object_creation_expression")
}

// extractJavaLikeRefs is shared by Java and Apex (C# has its own reference
// walk in csharp.go): import-declaration captures plus a generic
// call/instantiation node-kind walk.
func extractJavaLikeRefs(language *tree_sitter.Language, query string, root *tree_sitter.Node, source []byte, callKind, newKind string) []model.Reference {
	var refs []model.Reference
	matches := runQuery(language, query, root, source)
	for _, m := range matches {
		if m.primary.Kind() == "import_declaration" || m.primary.Kind() == "using_directive" {
			path := importPathText(m.primary, source)
			refs = append(refs, model.Reference{TargetName: lastDotSegment(path), Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
		}
	}

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{callKind: true}, &calls)
	for _, call := range calls {
		nameNode := call.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		refs = append(refs, model.Reference{TargetName: nodeText(nameNode, source), Kind: model.RefCall, Line: line(call)})
	}

	var news []*tree_sitter.Node
	findCallNodes(root, map[string]bool{newKind: true}, &news)
	for _, n := range news {
		typeNode := n.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		refs = append(refs, model.Reference{TargetName: nodeText(typeNode, source), Kind: model.RefCall, Line: line(n)})
	}

	var classes []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"class_declaration": true}, &classes)
	for _, cls := range classes {
		nameNode := cls.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		className := nodeText(nameNode, source)
		if superclass := cls.ChildByFieldName("superclass"); superclass != nil {
			walkAll(superclass, func(n *tree_sitter.Node) {
				if n.Kind() == "type_identifier" || n.Kind() == "identifier" {
					refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: model.RefInherits, Line: line(cls), SourceName: className})
				}
			})
		}
		if interfaces := cls.ChildByFieldName("interfaces"); interfaces != nil {
			walkAll(interfaces, func(n *tree_sitter.Node) {
				if n.Kind() == "type_identifier" {
					refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: model.RefImplements, Line: line(cls), SourceName: className})
				}
			})
		}
	}
	return refs
}

func importPathText(importDecl *tree_sitter.Node, source []byte) string {
	for _, c := range children(importDecl) {
		switch c.Kind() {
		case "scoped_identifier", "identifier", "qualified_name":
			return nodeText(c, source)
		}
	}
	return nodeText(importDecl, source)
}
