package parsing

import (
	"regexp"
	"strings"
)

var scriptBlockRe = regexp.MustCompile(`(?s)<script(\s[^>]*)?>.*?</script>`)

// PreprocessSFC extracts <script>/<script setup> blocks from a Vue or
// Svelte single-file-component and blanks out everything else, preserving
// line numbers so tree-sitter diagnostics and symbol line ranges stay
// correct (spec §4.2). Returns the processed source and the effective
// script language to parse it as.
func PreprocessSFC(source []byte) ([]byte, Language) {
	text := string(source)
	lines := strings.Split(text, "\n")
	scriptLine := make([]bool, len(lines))
	effective := LangJavaScript

	for _, loc := range scriptBlockRe.FindAllStringIndex(text, -1) {
		block := text[loc[0]:loc[1]]
		openEnd := strings.IndexByte(block, '>') + 1
		attrs := block[:openEnd]
		if strings.Contains(attrs, `lang="ts"`) || strings.Contains(attrs, `lang='ts'`) ||
			strings.Contains(attrs, `lang="tsx"`) || strings.Contains(attrs, `lang='tsx'`) {
			effective = LangTypeScript
		}

		blockStartLine := strings.Count(text[:loc[0]], "\n")
		openingLines := strings.Count(block[:openEnd], "\n")
		closingTagStart := strings.LastIndex(block, "</script>")
		closingLines := strings.Count(block[:closingTagStart], "\n")

		contentStart := blockStartLine + openingLines + 1
		contentEnd := blockStartLine + closingLines
		if contentEnd > len(lines) {
			contentEnd = len(lines)
		}
		for i := contentStart; i < contentEnd; i++ {
			scriptLine[i] = true
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if scriptLine[i] {
			out[i] = line
		}
	}
	return []byte(strings.Join(out, "\n")), effective
}

var templateTagRe = regexp.MustCompile(`<template\b[^>]*>|</template\s*>`)

// ExtractTemplate returns a Vue SFC's outermost <template> block content and
// its 1-based starting line number, for the richer-variant template
// reference scan (spec supplement, resolved per original_source semantics).
// Depth is tracked across the open/close tags so a template containing
// nested <template v-if>/<template #slot>/<template v-for> blocks — routine
// in real Vue components — yields the whole outer block instead of
// stopping at the first nested </template>. A self-closing <template ... />
// doesn't open a nesting level.
func ExtractTemplate(source []byte) (content string, startLine int, ok bool) {
	text := string(source)

	depth := 0
	opened := false
	var contentStart, contentEnd int
	for _, loc := range templateTagRe.FindAllStringIndex(text, -1) {
		tag := text[loc[0]:loc[1]]
		if strings.HasPrefix(tag, "</") {
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				contentEnd = loc[0]
				break
			}
			continue
		}

		inner := strings.TrimRight(tag[:len(tag)-1], " \t\n\r")
		if strings.HasSuffix(inner, "/") {
			continue // self-closing, doesn't open a nesting level
		}
		if depth == 0 {
			opened = true
			contentStart = loc[1]
		}
		depth++
	}

	if !opened || depth != 0 {
		return "", 0, false
	}
	startLine = strings.Count(text[:contentStart], "\n") + 1
	return text[contentStart:contentEnd], startLine, true
}
