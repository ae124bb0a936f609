package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var csharpQuery = `
(method_declaration name: (identifier) @method.name) @method
(constructor_declaration name: (identifier) @constructor.name) @constructor
(class_declaration name: (identifier) @class.name) @class
(interface_declaration name: (identifier) @interface.name) @interface
(struct_declaration name: (identifier) @struct.name) @struct
(record_declaration name: (identifier) @record.name) @record
(enum_declaration name: (identifier) @enum.name) @enum
(property_declaration name: (identifier) @property.name) @property
(field_declaration
    (variable_declaration
        (variable_declarator (identifier) @field.name))) @field
(using_directive (qualified_name) @using.name) @using
(using_directive (identifier) @using.name) @using
(namespace_declaration name: (qualified_name) @namespace.name) @namespace
(namespace_declaration name: (identifier) @namespace.name) @namespace
(delegate_declaration name: (identifier) @delegate.name) @delegate
(event_field_declaration
    (variable_declaration
        (variable_declarator (identifier) @event.name))) @event
`

type csharpExtractor struct{}

func csharpLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
}

func (csharpExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	return extractJavaLike(csharpLanguage(), csharpQuery, tree.RootNode(), source)
}

func (csharpExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	matches := runQuery(csharpLanguage(), csharpQuery, root, source)
	for _, m := range matches {
		if n := m.names["using.name"]; n != nil {
			path := nodeText(n, source)
			refs = append(refs, model.Reference{TargetName: lastDotSegment(path), Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
		}
	}

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"invocation_expression": true}, &calls)
	for _, call := range calls {
		funcNode := call.ChildByFieldName("function")
		if funcNode == nil {
			continue
		}
		name := nodeText(funcNode, source)
		if funcNode.Kind() == "member_access_expression" {
			if nameNode := funcNode.ChildByFieldName("name"); nameNode != nil {
				name = nodeText(nameNode, source)
			}
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}

	var news []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"object_creation_expression": true}, &news)
	for _, n := range news {
		if typeNode := n.ChildByFieldName("type"); typeNode != nil {
			refs = append(refs, model.Reference{TargetName: nodeText(typeNode, source), Kind: model.RefCall, Line: line(n)})
		}
	}

	var classes []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"class_declaration": true}, &classes)
	for _, cls := range classes {
		nameNode := cls.ChildByFieldName("name")
		base := cls.ChildByFieldName("bases")
		if nameNode == nil || base == nil {
			continue
		}
		className := nodeText(nameNode, source)
		first := true
		walkAll(base, func(n *tree_sitter.Node) {
			if n.Kind() != "identifier" {
				return
			}
			kind := model.RefImplements
			if first {
				kind = model.RefInherits
				first = false
			}
			refs = append(refs, model.Reference{TargetName: nodeText(n, source), Kind: kind, Line: line(cls), SourceName: className})
		})
	}
	return refs
}
