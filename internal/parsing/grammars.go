// Package parsing owns grammar registration and the per-file parse step
// (spec §4.2): a closed extension-to-language table, path-sensitive
// overrides for Salesforce metadata, and single-file-component preprocessing
// for .vue/.svelte.
package parsing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// Language is the closed vocabulary of languages the core recognizes. Apex
// and sfmeta reuse the Java and plain-XML handling respectively (spec §4.2).
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangCPP        Language = "cpp"
	LangPHP        Language = "php"
	LangZig        Language = "zig" // community grammar, spec §4.2
	LangApex       Language = "apex"  // parsed with the Java grammar, spec §4.2
	LangSFMeta     Language = "sfmeta" // Salesforce metadata XML, no tree-sitter grammar in use
	LangVue        Language = "vue"   // SFC: script parsed as JS/TS, template scanned separately
	LangSvelte     Language = "svelte"
	LangUnknown    Language = ""
)

// grammarFactory maps a Language to the tree-sitter grammar it should parse
// with. Vue/Svelte don't appear here: their script block is re-dispatched to
// javascript/typescript after SFC preprocessing (see sfc.go).
var grammarFactory = map[Language]func() *tree_sitter.Language{
	LangGo:         func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	LangJavaScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
	LangTypeScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
	LangPython:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	LangRust:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	LangJava:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	LangApex:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	LangCSharp:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
	LangCPP:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	LangPHP:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
	LangZig:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
}

// extTable is the closed extension table (spec §4.2). Ambiguous extensions
// (.cls, .trigger, .xml) are resolved by path, not extension alone — see
// LanguageForPath.
var extTable = map[string]Language{
	".go":    LangGo,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".py":    LangPython,
	".rs":    LangRust,
	".java":  LangJava,
	".cs":    LangCSharp,
	".cpp":   LangCPP,
	".cc":    LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".h":     LangCPP,
	".php":   LangPHP,
	".cls":   LangApex,
	".trigger": LangApex,
	".zig":   LangZig,
	".vue":   LangVue,
	".svelte": LangSvelte,
}

// LanguageForPath resolves a Language for a file, applying Salesforce's
// path-sensitive override: any file whose name ends in "-meta.xml"
// (case-insensitive) is metadata, not Apex or a generic XML source file
// (spec §4.2).
func LanguageForPath(path string) Language {
	if hasSuffixFold(path, "-meta.xml") {
		return LangSFMeta
	}
	ext := extOf(path)
	if lang, ok := extTable[ext]; ok {
		return lang
	}
	return LangUnknown
}

// NewParser builds a ready tree-sitter parser for lang, or ok=false when the
// language has no tree-sitter grammar (sfmeta, or an unrecognized language),
// matching the "no_grammar" error category (spec §7).
func NewParser(lang Language) (*tree_sitter.Parser, bool) {
	factory, ok := grammarFactory[lang]
	if !ok {
		return nil, false
	}
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(factory()); err != nil {
		return nil, false
	}
	return p, true
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			break
		}
		if path[i] == '.' {
			return lower(path[i:])
		}
	}
	return ""
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return lower(s[len(s)-len(suffix):]) == suffix
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
