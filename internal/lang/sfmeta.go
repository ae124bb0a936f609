package lang

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// sfMetadataElements maps a Salesforce metadata XML tag to the symbol kind
// it represents when it carries its own fullName/apiName (spec §4.3). No
// tree-sitter grammar in the corpus parses XML, so this extractor walks the
// stream with stdlib encoding/xml instead (justified in DESIGN.md).
var sfMetadataElements = map[string]model.SymbolKind{
	"CustomObject": model.KindClass, "CustomField": model.KindField,
	"fields": model.KindField, "validationRules": model.KindFunction,
	"webLinks": model.KindFunction, "listViews": model.KindFunction,
	"recordTypes": model.KindClass, "compactLayouts": model.KindClass,
	"fieldSets": model.KindClass, "sharingRules": model.KindFunction,
	"Flow": model.KindClass, "Workflow": model.KindClass,
	"WorkflowRule": model.KindFunction, "WorkflowFieldUpdate": model.KindFunction,
	"WorkflowAlert": model.KindFunction, "ApprovalProcess": model.KindClass,
	"Profile": model.KindClass, "PermissionSet": model.KindClass,
	"fieldPermissions": model.KindField, "objectPermissions": model.KindField,
	"classAccesses": model.KindField, "pageAccesses": model.KindField,
	"tabVisibilities": model.KindField,
	"Layout": model.KindClass, "FlexiPage": model.KindClass,
	"CustomTab": model.KindClass, "CustomApplication": model.KindClass,
	"HomePageComponent": model.KindClass, "LightningComponentBundle": model.KindClass,
	"CustomLabel": model.KindConstant, "CustomLabels": model.KindClass,
	"labels": model.KindConstant, "StaticResource": model.KindConstant,
	"ApexClass": model.KindClass, "ApexTrigger": model.KindClass,
	"ApexPage": model.KindClass, "ApexComponent": model.KindClass,
	"EmailTemplate": model.KindClass, "CustomMetadata": model.KindClass,
	"CustomSetting": model.KindClass,
}

var sfAlwaysRefTags = map[string]bool{
	"apexClass": true, "apexPage": true, "apexComponent": true, "apexTrigger": true,
	"triggerType": true, "template": true, "customObject": true, "referenceTo": true,
	"relatedList": true, "relationshipName": true, "lookupFilter": true,
	"actionName": true, "flowName": true, "targetWorkflow": true,
}

var sfContextRefParents = map[string]map[string]bool{
	"field": {"fieldPermissions": true, "layoutItems": true, "columns": true,
		"WorkflowFieldUpdate": true, "sortField": true, "searchResultsAdditionalFields": true,
		"displayedFields": true, "filterItems": true},
	"object": {"fieldPermissions": true, "objectPermissions": true, "listViews": true, "searchLayouts": true},
	"class":  {"classAccesses": true},
	"name":   {"actionOverrides": true},
}

var sfFormulaFieldRe = regexp.MustCompile(`\b([A-Z]\w+)\.([A-Za-z_]\w+__[cr])\b`)

type sfmetaElem struct {
	tag      string
	text     strings.Builder
	children []string // always empty use; tag text accumulation is enough
	line     int
}

// ExtractSFMeta walks a Salesforce metadata XML document, emitting both the
// named metadata elements it declares (symbols) and the cross-references it
// makes to other metadata (spec §4.3/§4.4).
func ExtractSFMeta(source []byte, filePath string) ([]model.Symbol, []model.Reference) {
	dec := xml.NewDecoder(strings.NewReader(string(source)))

	var symbols []model.Symbol
	var refs []model.Reference

	type frame struct {
		tag        string
		line       int
		parentName string
		text       strings.Builder
		isKnown    bool
		kind       model.SymbolKind
		// children-by-tag captured text, for fullName/apiName/label lookups
		childText map[string]string
	}
	var stack []*frame
	root := true

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			ln, _ := dec.InputPos()
			f := &frame{tag: t.Name.Local, line: ln, childText: make(map[string]string)}
			if len(stack) > 0 {
				f.parentName = stack[len(stack)-1].parentName
			}
			stack = append(stack, f)
			_ = root
			root = false
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			text := strings.TrimSpace(f.text.String())

			var parentFrame *frame
			if len(stack) > 0 {
				parentFrame = stack[len(stack)-1]
				if text != "" {
					parentFrame.childText[f.tag] = text
				}
			}

			if kind, ok := sfMetadataElements[f.tag]; ok {
				name := firstNonEmpty(f.childText["fullName"], f.childText["apiName"], f.childText["label"], f.childText["masterLabel"])
				parentQualified := f.parentName
				if name == "" {
					if parentQualified == "" {
						name = deriveNameFromPath(filePath)
					} else {
						name = f.tag
					}
				}
				qualified := name
				if parentQualified != "" {
					qualified = parentQualified + "." + name
				}
				description := firstNonEmpty(f.childText["description"], f.childText["inlineHelpText"])
				sig := f.tag + ": " + name
				if fieldType := f.childText["type"]; fieldType != "" {
					sig += " (" + fieldType + ")"
				}
				if strings.EqualFold(f.childText["required"], "true") {
					sig += " [required]"
				}
				symbols = append(symbols, model.Symbol{
					Name: name, Kind: kind, QualifiedName: qualified, Signature: sig,
					Docstring: description, LineStart: f.line, LineEnd: f.line,
					Visibility: model.VisibilityPublic, IsExported: true,
				})
				if kind == model.KindClass && parentFrame != nil {
					// Container elements become the parent scope for nested
					// metadata (e.g. CustomObject -> its CustomFields).
					parentFrame.childText["__qualified_scope"] = qualified
				}
			}

			if sfAlwaysRefTags[f.tag] && text != "" {
				refs = append(refs, model.Reference{TargetName: text, Kind: model.RefReference, Line: f.line})
			} else if validParents, ok := sfContextRefParents[f.tag]; ok && parentFrame != nil && validParents[parentFrame.tag] && text != "" {
				target := text
				if idx := strings.LastIndexByte(text, '.'); idx >= 0 {
					target = text[idx+1:]
				}
				refs = append(refs, model.Reference{TargetName: target, Kind: model.RefReference, Line: f.line})
			} else if f.tag == "formula" || f.tag == "formulaText" || f.tag == "errorConditionFormula" {
				for _, m := range sfFormulaFieldRe.FindAllStringSubmatch(text, -1) {
					refs = append(refs, model.Reference{TargetName: m[2], Kind: model.RefReference, Line: f.line})
				}
			}

			// Propagate the container scope down for subsequent siblings.
			if parentFrame != nil {
				if scoped, ok := parentFrame.childText["__qualified_scope"]; ok {
					parentFrame.parentName = scoped
				}
			}
		}
	}
	return symbols, refs
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func deriveNameFromPath(p string) string {
	base := p
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	for _, suffix := range []string{"-meta.xml", ".meta.xml"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
