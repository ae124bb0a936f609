package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var goQuery = `
(function_declaration name: (identifier) @function.name) @function
(method_declaration
    receiver: (parameter_list) @method.receiver
    name: (field_identifier) @method.name) @method
(type_declaration (type_spec name: (type_identifier) @type.name) @type)
(import_spec path: (interpreted_string_literal) @import.path) @import
`

type goExtractor struct{}

func goLanguage() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) }

func (goExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	matches := runQuery(goLanguage(), goQuery, root, source)

	var symbols []model.Symbol
	for _, m := range matches {
		switch {
		case m.names["function.name"] != nil:
			n := m.names["function.name"]
			name := nodeText(n, source)
			fn := m.primary
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindFunction, QualifiedName: name,
				Signature: "func " + name, LineStart: line(fn), LineEnd: endLine(fn),
				IsExported: isGoExported(name), Visibility: goVisibility(name),
			})
		case m.names["method.name"] != nil:
			n := m.names["method.name"]
			name := nodeText(n, source)
			recvText := ""
			if recv := m.names["method.receiver"]; recv != nil {
				recvText = receiverTypeName(nodeText(recv, source))
			}
			qualified := name
			if recvText != "" {
				qualified = recvText + "." + name
			}
			fn := m.primary
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: model.KindMethod, QualifiedName: qualified,
				Signature: "func (" + recvText + ") " + name, LineStart: line(fn), LineEnd: endLine(fn),
				ParentID: 0, IsExported: isGoExported(name), Visibility: goVisibility(name),
			})
		case m.names["type.name"] != nil:
			n := m.names["type.name"]
			name := nodeText(n, source)
			fn := m.primary
			kind := goTypeKind(fn)
			symbols = append(symbols, model.Symbol{
				Name: name, Kind: kind, QualifiedName: name,
				Signature: kindWord(kind) + " " + name, LineStart: line(fn), LineEnd: endLine(fn),
				IsExported: isGoExported(name), Visibility: goVisibility(name),
			})
		}
	}
	return symbols
}

func (goExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	root := tree.RootNode()
	matches := runQuery(goLanguage(), goQuery, root, source)

	var refs []model.Reference
	for _, m := range matches {
		if n := m.names["import.path"]; n != nil {
			path := trimQuotes(nodeText(n, source))
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
		if funcNode.Kind() == "selector_expression" {
			if field := funcNode.ChildByFieldName("field"); field != nil {
				name = nodeText(field, source)
			}
		}
		refs = append(refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(call)})
	}
	return refs
}

func isGoExported(name string) bool { return name != "" && name[0] >= 'A' && name[0] <= 'Z' }

func goVisibility(name string) model.Visibility {
	if isGoExported(name) {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func receiverTypeName(recvText string) string {
	// recvText looks like "(s *Store)" or "(s Store)"; take the last token,
	// stripping a leading pointer star.
	recvText = strings.Trim(strings.TrimSpace(recvText), "()")
	fields := strings.Fields(recvText)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "*")
}

func goTypeKind(typeDeclNode *tree_sitter.Node) model.SymbolKind {
	for _, c := range children(typeDeclNode) {
		if c.Kind() != "type_spec" {
			continue
		}
		for _, sub := range children(c) {
			switch sub.Kind() {
			case "struct_type":
				return model.KindStruct
			case "interface_type":
				return model.KindInterface
			}
		}
	}
	return model.KindStruct
}

func kindWord(k model.SymbolKind) string {
	switch k {
	case model.KindInterface:
		return "interface"
	default:
		return "type"
	}
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"`+"`")
}

func lastSlash(s string) int {
	return strings.LastIndexByte(s, '/')
}
