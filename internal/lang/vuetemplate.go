package lang

import (
	"regexp"
	"strings"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

var templateExprPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\{\{(.*?)\}\}`),
	regexp.MustCompile(`(?:^|[\s])(?::|v-bind:)[\w.-]+="([^"]*)"`),
	regexp.MustCompile(`v-[\w-]+="([^"]*)"`),
	regexp.MustCompile(`(?:@|v-on:)[\w.-]+="([^"]*)"`),
}

var templateIdentRe = regexp.MustCompile(`\b([a-zA-Z_$][a-zA-Z0-9_$]*)\b`)
var templateComponentRe = regexp.MustCompile(`<([A-Z][a-zA-Z0-9]+)`)

// ScanTemplateReferences walks a Vue <template> block looking for
// identifiers that name a symbol already known from the script block:
// mustache interpolations, attribute/directive bindings, event handlers,
// and PascalCase component tags (spec §4.3 Vue handling). Matching runs
// over the full template text rather than line by line, so a binding whose
// expression spans a newline — a multi-line `:attr="..."` value or a
// wrapped `{{ ... }}` interpolation — is still captured; the line number is
// reconstructed from each match's byte offset.
func ScanTemplateReferences(templateContent string, startLine int, knownSymbols map[string]bool, filePath string) []model.Reference {
	if templateContent == "" || len(knownSymbols) == 0 {
		return nil
	}

	var refs []model.Reference
	seen := map[string]bool{}

	lineAt := func(offset int) int {
		return startLine + strings.Count(templateContent[:offset], "\n")
	}

	for _, pattern := range templateExprPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(templateContent, -1) {
			if len(m) < 4 {
				continue
			}
			exprStart, exprEnd := m[2], m[3]
			expr := templateContent[exprStart:exprEnd]
			for _, identMatch := range templateIdentRe.FindAllStringSubmatchIndex(expr, -1) {
				name := expr[identMatch[2]:identMatch[3]]
				if knownSymbols[name] && !seen[name] {
					seen[name] = true
					refs = append(refs, model.Reference{
						TargetName: name, Kind: model.RefTemplate, Line: lineAt(exprStart + identMatch[2]), SourceFile: filePath,
					})
				}
			}
		}
	}

	for _, m := range templateComponentRe.FindAllStringSubmatchIndex(templateContent, -1) {
		name := templateContent[m[2]:m[3]]
		if knownSymbols[name] && !seen[name] {
			seen[name] = true
			refs = append(refs, model.Reference{
				TargetName: name, Kind: model.RefTemplate, Line: lineAt(m[2]), SourceFile: filePath,
			})
		}
	}

	return refs
}
