package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var pythonQuery = `
(class_definition
    body: (block
        (function_definition name: (identifier) @method.name) @method))
(function_definition name: (identifier) @function.name) @function
(class_definition name: (identifier) @class.name) @class
(import_statement) @import
(import_from_statement) @import
`

type pythonExtractor struct{}

func pythonLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_python.Language())
}

func (pythonExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	matches := runQuery(pythonLanguage(), pythonQuery, root, source)

	var symbols []model.Symbol
	for _, m := range matches {
		switch {
		case m.names["class.name"] != nil:
			n := m.names["class.name"]
			name := nodeText(n, source)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindClass, QualifiedName: name, Signature: "class " + name,
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: !strings.HasPrefix(name, "_"),
				Visibility: pyVisibility(name), Docstring: pyDocstring(m.primary, source),
			})
		case m.names["function.name"] != nil:
			n := m.names["function.name"]
			name := nodeText(n, source)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindFunction, QualifiedName: name, Signature: "def " + name + pyParams(m.primary, source),
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: !strings.HasPrefix(name, "_"),
				Visibility: pyVisibility(name), Docstring: pyDocstring(m.primary, source),
			})
		case m.names["method.name"] != nil:
			n := m.names["method.name"]
			name := nodeText(n, source)
			kind := model.KindMethod
			if name == "__init__" {
				kind = model.KindConstructor
			}
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: kind, QualifiedName: name, Signature: "def " + name + pyParams(m.primary, source),
				LineStart: line(m.primary), LineEnd: endLine(m.primary), IsExported: !strings.HasPrefix(name, "_"),
				Visibility: pyVisibility(name), Docstring: pyDocstring(m.primary, source),
			})
		}
	}
	return symbols
}

func (pythonExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	var refs []model.Reference

	matches := runQuery(pythonLanguage(), pythonQuery, root, source)
	for _, m := range matches {
		if m.primary.Kind() == "import_statement" {
			for _, c := range children(m.primary) {
				if c.Kind() == "dotted_name" || c.Kind() == "aliased_import" {
					refs = append(refs, model.Reference{TargetName: lastDotSegment(nodeText(c, source)), Kind: model.RefImport, Line: line(m.primary), ImportPath: nodeText(c, source)})
				}
			}
		} else if m.primary.Kind() == "import_from_statement" {
			if modNode := m.primary.ChildByFieldName("module_name"); modNode != nil {
				path := nodeText(modNode, source)
				for _, c := range children(m.primary) {
					if c.Kind() == "dotted_name" && c != modNode {
						refs = append(refs, model.Reference{TargetName: nodeText(c, source), Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
					} else if c.Kind() == "import_list" {
						for _, item := range children(c) {
							if item.Kind() == "dotted_name" {
								refs = append(refs, model.Reference{TargetName: nodeText(item, source), Kind: model.RefImport, Line: line(m.primary), ImportPath: path})
							}
						}
					}
				}
			}
		}
	}

	var calls []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"call": true}, &calls)
	for _, call := range calls {
		funcNode := call.ChildByFieldName("function")
		if funcNode == nil {
			continue
		}
		name := nodeText(funcNode, source)
		if funcNode.Kind() == "attribute" {
			if attr := funcNode.ChildByFieldName("attribute"); attr != nil {
				name = nodeText(attr, source)
			}
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}

	var classDefs []*tree_sitter.Node
	findCallNodes(root, map[string]bool{"class_definition": true}, &classDefs)
	for _, cls := range classDefs {
		nameNode := cls.ChildByFieldName("name")
		superclasses := cls.ChildByFieldName("superclasses")
		if nameNode == nil || superclasses == nil {
			continue
		}
		for _, arg := range children(superclasses) {
			if arg.Kind() == "identifier" {
				refs = append(refs, model.Reference{TargetName: nodeText(arg, source), Kind: model.RefInherits, Line: line(cls), SourceName: nodeText(nameNode, source)})
			}
		}
	}
	return refs
}

func pyVisibility(name string) model.Visibility {
	if strings.HasPrefix(name, "_") {
		return model.VisibilityPrivate
	}
	return model.VisibilityPublic
}

func pyParams(def *tree_sitter.Node, source []byte) string {
	if params := def.ChildByFieldName("parameters"); params != nil {
		return nodeText(params, source)
	}
	return "()"
}

func pyDocstring(def *tree_sitter.Node, source []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	if first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	return strings.Trim(nodeText(str, source), `"'`)
}

func lastDotSegment(s string) string {
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
