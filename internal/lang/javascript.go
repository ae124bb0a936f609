package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// javascriptExtractor and typescriptExtractor share one walker; TypeScript
// additionally recognizes interface/type-alias/enum declarations and TS
// heritage clauses (spec §4.3, grounded on original_source's javascript_lang
// plus the teacher's TS tree-sitter query additions for interfaces/enums/
// type aliases).
type javascriptExtractor struct{}
type typescriptExtractor struct{}

func (javascriptExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	w := &jsWalker{source: source, filePath: filePath, ts: false}
	w.walkSymbols(tree.RootNode(), "", false)
	return w.symbols
}

func (javascriptExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	w := &jsWalker{source: source, filePath: filePath, ts: false}
	w.walkRefs(tree.RootNode(), "")
	w.refs = append(w.refs, w.pendingInherits...)
	return w.refs
}

func (typescriptExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	w := &jsWalker{source: source, filePath: filePath, ts: true}
	w.walkSymbols(tree.RootNode(), "", false)
	return w.symbols
}

func (typescriptExtractor) ExtractReferences(tree *tree_sitter.Tree, source []byte, filePath string) []model.Reference {
	w := &jsWalker{source: source, filePath: filePath, ts: true}
	w.walkRefs(tree.RootNode(), "")
	w.refs = append(w.refs, w.pendingInherits...)
	return w.refs
}

type jsWalker struct {
	source          []byte
	filePath        string
	ts              bool
	symbols         []model.Symbol
	refs            []model.Reference
	pendingInherits []model.Reference
}

var jsKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true, "this": true,
	"super": true, "arguments": true, "new": true, "void": true, "typeof": true,
	"instanceof": true, "in": true, "of": true, "async": true, "await": true,
	"yield": true, "return": true, "throw": true, "delete": true, "NaN": true,
	"Infinity": true,
}

func (w *jsWalker) text(n *tree_sitter.Node) string { return nodeText(n, w.source) }

func (w *jsWalker) makeSymbol(name string, kind model.SymbolKind, start, end *tree_sitter.Node,
	qualified, sig, doc, parent string, exported bool) model.Symbol {
	return model.Symbol{
		Name: name, Kind: kind, LineStart: line(start), LineEnd: endLine(end),
		QualifiedName: qualified, Signature: sig, Docstring: doc, IsExported: exported,
		Visibility: model.VisibilityPublic,
	}
}

func (w *jsWalker) docFor(n *tree_sitter.Node) string {
	prev := n.PrevSibling()
	if prev != nil && prev.Kind() == "comment" {
		text := strings.TrimSpace(w.text(prev))
		if strings.HasPrefix(text, "/**") {
			text = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
			return strings.TrimSpace(text)
		}
	}
	return ""
}

func (w *jsWalker) paramsText(params *tree_sitter.Node) string {
	if params == nil {
		return ""
	}
	return strings.Trim(w.text(params), "()")
}

func (w *jsWalker) walkSymbols(node *tree_sitter.Node, parentName string, isExported bool) {
	for _, child := range children(node) {
		exported := isExported || child.Kind() == "export_statement"

		switch child.Kind() {
		case "function_declaration":
			w.extractFunction(child, parentName, exported, false)
		case "generator_function_declaration":
			w.extractFunction(child, parentName, exported, true)
		case "class_declaration", "class":
			w.extractClass(child, parentName, exported)
		case "lexical_declaration", "variable_declaration":
			w.extractVariableDecl(child, parentName, exported)
		case "export_statement":
			w.walkSymbols(child, parentName, true)
		case "expression_statement":
			w.extractModuleExports(child, parentName)
		case "interface_declaration":
			if w.ts {
				w.extractInterface(child, parentName, exported)
			} else {
				w.walkSymbols(child, parentName, exported)
			}
		case "type_alias_declaration":
			if w.ts {
				w.extractTypeAlias(child, parentName, exported)
			} else {
				w.walkSymbols(child, parentName, exported)
			}
		case "enum_declaration":
			if w.ts {
				w.extractEnum(child, parentName, exported)
			} else {
				w.walkSymbols(child, parentName, exported)
			}
		default:
			w.walkSymbols(child, parentName, exported)
		}
	}
}

func (w *jsWalker) extractFunction(node *tree_sitter.Node, parentName string, exported, generator bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	params := node.ChildByFieldName("parameters")
	prefix := "function"
	if generator {
		prefix = "function*"
	}
	sig := prefix + " " + name + "(" + w.paramsText(params) + ")"
	w.symbols = append(w.symbols, w.makeSymbol(name, model.KindFunction, node, node,
		qualify(parentName, name), sig, w.docFor(node), parentName, exported))
}

func (w *jsWalker) extractClass(node *tree_sitter.Node, parentName string, exported bool) {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode == nil {
		// Anonymous default export class: derive name from the file path
		// (common for LWC: `export default class extends LightningElement {}`).
		base := filenameBase(w.filePath)
		if base == "" {
			return
		}
		name = base
	} else {
		name = w.text(nameNode)
	}
	qualified := qualify(parentName, name)
	sig := "class " + name

	for _, heritage := range children(node) {
		if heritage.Kind() != "class_heritage" {
			continue
		}
		sig += " " + w.text(heritage)
		for _, sub := range children(heritage) {
			switch sub.Kind() {
			case "extends_clause":
				for _, exn := range children(sub) {
					if exn.Kind() == "identifier" || exn.Kind() == "type_identifier" {
						w.pendingInherits = append(w.pendingInherits, model.Reference{
							TargetName: w.text(exn), Kind: model.RefInherits, Line: line(node), SourceName: qualified,
						})
						break
					}
				}
			case "implements_clause":
				for _, imp := range children(sub) {
					if imp.Kind() == "type_identifier" || imp.Kind() == "identifier" {
						w.pendingInherits = append(w.pendingInherits, model.Reference{
							TargetName: w.text(imp), Kind: model.RefImplements, Line: line(node), SourceName: qualified,
						})
					}
				}
			case "identifier":
				w.pendingInherits = append(w.pendingInherits, model.Reference{
					TargetName: w.text(sub), Kind: model.RefInherits, Line: line(node), SourceName: qualified,
				})
			}
		}
		break
	}

	w.symbols = append(w.symbols, w.makeSymbol(name, model.KindClass, node, node,
		qualified, sig, w.docFor(node), parentName, exported))

	if body := node.ChildByFieldName("body"); body != nil {
		w.extractClassMembers(body, qualified)
	}
}

func (w *jsWalker) extractClassMembers(body *tree_sitter.Node, className string) {
	for _, child := range children(body) {
		if child.Kind() != "method_definition" && child.Kind() != "public_field_definition" && child.Kind() != "field_definition" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)
		qualified := className + "." + name

		if child.Kind() == "method_definition" {
			params := child.ChildByFieldName("parameters")
			sig := name + "(" + w.paramsText(params) + ")"
			var prefixes []string
			for _, sub := range children(child) {
				if sub == nameNode {
					continue
				}
				t := w.text(sub)
				if t == "static" || t == "async" || t == "get" || t == "set" {
					prefixes = append(prefixes, t)
				}
			}
			if len(prefixes) > 0 {
				sig = strings.Join(prefixes, " ") + " " + sig
			}
			kind := model.KindMethod
			if name == "constructor" {
				kind = model.KindConstructor
			}
			w.symbols = append(w.symbols, w.makeSymbol(name, kind, child, child,
				qualified, sig, w.docFor(child), className, false))
		} else {
			w.symbols = append(w.symbols, w.makeSymbol(name, model.KindProperty, child, child,
				qualified, "", "", className, false))
		}
	}
}

func (w *jsWalker) extractVariableDecl(node *tree_sitter.Node, parentName string, exported bool) {
	declKind := ""
	for _, child := range children(node) {
		if t := w.text(child); t == "const" || t == "let" || t == "var" {
			declKind = t
			break
		}
	}
	for _, child := range children(node) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		if nameNode.Kind() == "object_pattern" || nameNode.Kind() == "array_pattern" {
			w.extractDestructured(nameNode, node, parentName, exported, declKind)
			continue
		}
		name := w.text(nameNode)
		qualified := qualify(parentName, name)

		switch {
		case valueNode != nil && (valueNode.Kind() == "arrow_function" || valueNode.Kind() == "function_expression" || valueNode.Kind() == "generator_function"):
			params := valueNode.ChildByFieldName("parameters")
			pText := w.paramsText(params)
			sig := "const " + name + " = (" + pText + ") =>"
			if valueNode.Kind() != "arrow_function" {
				sig = "const " + name + " = function(" + pText + ")"
			}
			w.symbols = append(w.symbols, w.makeSymbol(name, model.KindFunction, node, node,
				qualified, sig, w.docFor(node), parentName, exported))
		case valueNode != nil && valueNode.Kind() == "class":
			w.symbols = append(w.symbols, w.makeSymbol(name, model.KindClass, node, node,
				qualified, "const "+name+" = class", "", parentName, exported))
		default:
			kind := model.KindVariable
			if declKind == "const" {
				kind = model.KindConstant
			}
			valText := ""
			if valueNode != nil {
				valText = truncate(w.text(valueNode), 80)
			}
			sig := declKind + " " + name
			if valText != "" {
				sig += " = " + valText
			}
			w.symbols = append(w.symbols, w.makeSymbol(name, kind, node, node,
				qualified, sig, "", parentName, exported))
		}
	}
}

func (w *jsWalker) extractDestructured(pattern, decl *tree_sitter.Node, parentName string, exported bool, declKind string) {
	kind := model.KindVariable
	if declKind == "const" {
		kind = model.KindConstant
	}
	for _, name := range collectPatternNames(pattern, w.source) {
		qualified := qualify(parentName, name)
		w.symbols = append(w.symbols, w.makeSymbol(name, kind, decl, decl,
			qualified, declKind+" "+name, "", parentName, exported))
	}
}

func collectPatternNames(pattern *tree_sitter.Node, source []byte) []string {
	var out []string
	for _, child := range children(pattern) {
		switch child.Kind() {
		case "shorthand_property_identifier_pattern", "shorthand_property_identifier", "identifier":
			out = append(out, nodeText(child, source))
		case "pair_pattern":
			if value := child.ChildByFieldName("value"); value != nil {
				if value.Kind() == "identifier" {
					out = append(out, nodeText(value, source))
				} else if value.Kind() == "object_pattern" || value.Kind() == "array_pattern" {
					out = append(out, collectPatternNames(value, source)...)
				}
			}
		case "rest_pattern":
			for _, sub := range children(child) {
				if sub.Kind() == "identifier" {
					out = append(out, nodeText(sub, source))
				}
			}
		case "assignment_pattern":
			if left := child.ChildByFieldName("left"); left != nil {
				if left.Kind() == "identifier" || left.Kind() == "shorthand_property_identifier_pattern" || left.Kind() == "shorthand_property_identifier" {
					out = append(out, nodeText(left, source))
				}
			}
		case "object_pattern", "array_pattern":
			out = append(out, collectPatternNames(child, source)...)
		}
	}
	return out
}

func (w *jsWalker) extractInterface(node *tree_sitter.Node, parentName string, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.symbols = append(w.symbols, w.makeSymbol(name, model.KindInterface, node, node,
		qualify(parentName, name), "interface "+name, w.docFor(node), parentName, exported))
}

func (w *jsWalker) extractTypeAlias(node *tree_sitter.Node, parentName string, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.symbols = append(w.symbols, w.makeSymbol(name, model.KindStruct, node, node,
		qualify(parentName, name), "type "+name, w.docFor(node), parentName, exported))
}

func (w *jsWalker) extractEnum(node *tree_sitter.Node, parentName string, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.symbols = append(w.symbols, w.makeSymbol(name, model.KindEnum, node, node,
		qualify(parentName, name), "enum "+name, w.docFor(node), parentName, exported))
}

// extractModuleExports recognizes the CommonJS export idioms: module.exports
// = X, exports.X = fn, module.exports = { ... }.
func (w *jsWalker) extractModuleExports(node *tree_sitter.Node, parentName string) {
	for _, child := range children(node) {
		if child.Kind() != "assignment_expression" {
			continue
		}
		left := child.ChildByFieldName("left")
		right := child.ChildByFieldName("right")
		if left == nil || right == nil {
			continue
		}
		leftText := w.text(left)

		if leftText == "module.exports" || leftText == "exports" {
			if right.Kind() == "identifier" {
				w.markExported(w.text(right))
			} else if right.Kind() == "object" {
				w.extractObjectExportMembers(right)
			}
			continue
		}

		if left.Kind() != "member_expression" {
			continue
		}
		objNode := left.ChildByFieldName("object")
		propNode := left.ChildByFieldName("property")
		if objNode == nil || propNode == nil {
			continue
		}
		objText := w.text(objNode)
		propName := w.text(propNode)

		if objNode.Kind() == "member_expression" {
			if innerProp := objNode.ChildByFieldName("property"); innerProp != nil && w.text(innerProp) == "prototype" {
				if innerObj := objNode.ChildByFieldName("object"); innerObj != nil {
					objText = w.text(innerObj)
				}
			}
		}

		isExports := objText == "exports" || objText == "module.exports"
		if right.Kind() == "identifier" && isExports {
			w.markExported(w.text(right))
			continue
		}

		switch right.Kind() {
		case "function_expression", "arrow_function", "generator_function":
			params := right.ChildByFieldName("parameters")
			sig := objText + "." + propName + " = function(" + w.paramsText(params) + ")"
			w.symbols = append(w.symbols, w.makeSymbol(propName, model.KindFunction, child, child,
				objText+"."+propName, sig, w.docFor(node), objText, isExports))
		default:
			valText := truncate(w.text(right), 80)
			w.symbols = append(w.symbols, w.makeSymbol(propName, model.KindConstant, child, child,
				objText+"."+propName, objText+"."+propName+" = "+valText, "", objText, isExports))
		}
	}
}

func (w *jsWalker) extractObjectExportMembers(obj *tree_sitter.Node) {
	for _, child := range children(obj) {
		switch child.Kind() {
		case "method_definition":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := w.text(nameNode)
			params := child.ChildByFieldName("parameters")
			sig := "exports." + name + "(" + w.paramsText(params) + ")"
			w.symbols = append(w.symbols, w.makeSymbol(name, model.KindFunction, child, child,
				"exports."+name, sig, "", "exports", true))
		case "pair":
			keyNode := child.ChildByFieldName("key")
			valueNode := child.ChildByFieldName("value")
			if keyNode == nil || valueNode == nil {
				continue
			}
			name := w.text(keyNode)
			if valueNode.Kind() == "function_expression" || valueNode.Kind() == "arrow_function" || valueNode.Kind() == "generator_function" {
				params := valueNode.ChildByFieldName("parameters")
				sig := "exports." + name + " = function(" + w.paramsText(params) + ")"
				w.symbols = append(w.symbols, w.makeSymbol(name, model.KindFunction, child, child,
					"exports."+name, sig, "", "exports", true))
			} else {
				valText := truncate(w.text(valueNode), 80)
				w.symbols = append(w.symbols, w.makeSymbol(name, model.KindConstant, child, child,
					"exports."+name, "exports."+name+" = "+valText, "", "exports", true))
			}
		case "shorthand_property_identifier":
			w.markExported(w.text(child))
		}
	}
}

func (w *jsWalker) markExported(name string) {
	for i := range w.symbols {
		if w.symbols[i].Name == name {
			w.symbols[i].IsExported = true
		}
	}
}

// ---- Reference extraction ----

func (w *jsWalker) walkRefs(node *tree_sitter.Node, scopeName string) {
	for _, child := range children(node) {
		switch {
		case child.Kind() == "import_statement":
			w.extractESMImport(child, scopeName)
		case child.Kind() == "export_statement":
			w.walkRefs(child, scopeName)
		case child.Kind() == "call_expression":
			w.extractCall(child, scopeName)
		case child.Kind() == "new_expression":
			w.extractNew(child, scopeName)
		case child.Kind() == "identifier" && node.Kind() == "arguments":
			name := w.text(child)
			if name != "" && !jsKeywords[name] {
				w.refs = append(w.refs, model.Reference{TargetName: name, Kind: model.RefReference, Line: line(child), SourceName: scopeName})
			}
		case child.Kind() == "shorthand_property_identifier":
			if name := w.text(child); name != "" {
				w.refs = append(w.refs, model.Reference{TargetName: name, Kind: model.RefReference, Line: line(child), SourceName: scopeName})
			}
		default:
			newScope := scopeName
			switch child.Kind() {
			case "function_declaration", "class_declaration", "generator_function_declaration":
				if n := child.ChildByFieldName("name"); n != nil {
					newScope = qualify(scopeName, w.text(n))
				}
			case "lexical_declaration", "variable_declaration":
				for _, sub := range children(child) {
					if sub.Kind() == "variable_declarator" {
						if n := sub.ChildByFieldName("name"); n != nil && n.Kind() == "identifier" {
							newScope = qualify(scopeName, w.text(n))
							break
						}
					}
				}
			}
			w.walkRefs(child, newScope)
		}
	}
}

func (w *jsWalker) extractESMImport(node *tree_sitter.Node, scopeName string) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	path := strings.Trim(w.text(sourceNode), `'"`)

	var names []string
	for _, child := range children(node) {
		if child.Kind() != "import_clause" {
			continue
		}
		for _, sub := range children(child) {
			switch sub.Kind() {
			case "identifier":
				names = append(names, w.text(sub))
			case "named_imports":
				for _, spec := range children(sub) {
					if spec.Kind() == "import_specifier" {
						if n := spec.ChildByFieldName("name"); n != nil {
							names = append(names, w.text(n))
						}
					}
				}
			case "namespace_import":
				for _, nsChild := range children(sub) {
					if nsChild.Kind() == "identifier" {
						names = append(names, w.text(nsChild))
					}
				}
			}
		}
	}

	sfTarget := resolveSalesforceImportTarget(path)
	edgeKind := model.RefImport
	if strings.HasPrefix(path, "@salesforce/apex/") {
		edgeKind = model.RefCall
	}

	if len(names) == 0 {
		target := path
		if sfTarget != "" {
			target = sfTarget
		}
		w.refs = append(w.refs, model.Reference{TargetName: target, Kind: edgeKind, Line: line(node), SourceName: scopeName, ImportPath: path})
		return
	}
	for _, name := range names {
		target := name
		if sfTarget != "" {
			target = sfTarget
		}
		w.refs = append(w.refs, model.Reference{TargetName: target, Kind: edgeKind, Line: line(node), SourceName: scopeName, ImportPath: path})
		if edgeKind == model.RefCall && sfTarget != "" && strings.Contains(sfTarget, ".") {
			className := strings.SplitN(sfTarget, ".", 2)[0]
			w.refs = append(w.refs, model.Reference{TargetName: className, Kind: model.RefCall, Line: line(node), SourceName: scopeName, ImportPath: path})
		}
	}
}

// resolveSalesforceImportTarget maps an LWC @salesforce/* module specifier
// to the symbol name it denotes, so an LWC->Apex/schema/label/messageChannel
// import resolves like a same-language reference (spec §4.4).
func resolveSalesforceImportTarget(path string) string {
	switch {
	case strings.HasPrefix(path, "@salesforce/apex/"):
		return strings.TrimPrefix(path, "@salesforce/apex/")
	case strings.HasPrefix(path, "@salesforce/schema/"):
		return strings.TrimPrefix(path, "@salesforce/schema/")
	case strings.HasPrefix(path, "@salesforce/label/"):
		ref := strings.TrimPrefix(path, "@salesforce/label/")
		return strings.TrimPrefix(ref, "c.")
	case strings.HasPrefix(path, "@salesforce/messageChannel/"):
		return strings.TrimPrefix(path, "@salesforce/messageChannel/")
	default:
		return ""
	}
}

func (w *jsWalker) extractCall(node *tree_sitter.Node, scopeName string) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}
	var name string
	if funcNode.Kind() == "member_expression" {
		if prop := funcNode.ChildByFieldName("property"); prop != nil {
			name = w.text(prop)
		} else {
			name = w.text(funcNode)
		}
	} else {
		name = w.text(funcNode)
	}

	if name == "require" {
		if args := node.ChildByFieldName("arguments"); args != nil {
			for _, arg := range children(args) {
				if arg.Kind() == "string" {
					path := strings.Trim(w.text(arg), `'"`)
					target := path
					if idx := strings.LastIndex(path, "/"); idx >= 0 {
						target = path[idx+1:]
					}
					for _, ext := range []string{".js", ".json", ".mjs", ".cjs"} {
						if strings.HasSuffix(target, ext) {
							target = strings.TrimSuffix(target, ext)
							break
						}
					}
					w.refs = append(w.refs, model.Reference{TargetName: target, Kind: model.RefImport, Line: line(node), SourceName: scopeName, ImportPath: path})
					return
				}
			}
		}
	}

	w.refs = append(w.refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(node), SourceName: scopeName})

	if args := node.ChildByFieldName("arguments"); args != nil {
		w.walkRefs(args, scopeName)
	}
}

func (w *jsWalker) extractNew(node *tree_sitter.Node, scopeName string) {
	ctor := node.ChildByFieldName("constructor")
	if ctor == nil {
		return
	}
	var name string
	if ctor.Kind() == "member_expression" {
		if prop := ctor.ChildByFieldName("property"); prop != nil {
			name = w.text(prop)
		} else {
			name = w.text(ctor)
		}
	} else {
		name = w.text(ctor)
	}
	w.refs = append(w.refs, model.Reference{TargetName: name, Kind: model.RefCall, Line: line(ctor), SourceName: scopeName})

	if args := node.ChildByFieldName("arguments"); args != nil {
		w.walkRefs(args, scopeName)
	}
}

func filenameBase(p string) string {
	p = strings.TrimSuffix(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	if idx := strings.LastIndex(p, "."); idx > 0 {
		p = p[:idx]
	}
	return p
}
