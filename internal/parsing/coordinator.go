package parsing

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/river-mounts/roam-code-sf/internal/errs"
)

// Result is one file's parse outcome: the tree (nil on failure), the source
// actually fed to tree-sitter (post SFC-preprocessing for Vue/Svelte), the
// resolved language, and — for Vue — the raw, unprocessed source so the
// template block can still be scanned.
type Result struct {
	Tree        *tree_sitter.Tree
	Source      []byte // what was parsed (script-only for SFCs)
	RawSource   []byte // the file exactly as read
	Language    Language
	EffectiveLang Language // for SFCs, the language the script was parsed as
}

// ParseFile reads and parses one file, categorizing any failure per spec §7.
// A nil Result with a nil error means "not a recognized extension" (silent,
// uncounted skip, distinct from NoGrammar which still registers the file).
func ParseFile(path string) (*Result, error) {
	lang := LanguageForPath(path)
	if lang == LangUnknown {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeTransientIO, "read", path, err)
	}
	source := raw
	if !utf8.Valid(source) {
		source = bytes.ToValidUTF8(source, []byte("�"))
	}

	effective := lang
	parseSource := source
	if lang == LangVue || lang == LangSvelte {
		parseSource, effective = PreprocessSFC(source)
	}

	if lang == LangSFMeta {
		// No tree-sitter grammar covers Salesforce metadata XML; the sfmeta
		// extractor (internal/lang) parses it directly with encoding/xml.
		return &Result{Source: parseSource, RawSource: raw, Language: lang, EffectiveLang: lang}, nil
	}

	parser, ok := NewParser(effective)
	if !ok {
		return nil, errs.New(errs.ErrorTypeNoGrammar, "parse", path, fmt.Errorf("no grammar for %s", effective))
	}
	defer parser.Close()

	tree := parser.Parse(parseSource, nil)
	if tree == nil {
		return nil, errs.New(errs.ErrorTypeParse, "parse", path, fmt.Errorf("tree-sitter returned no tree"))
	}

	res := &Result{Tree: tree, Source: parseSource, RawSource: raw, Language: lang, EffectiveLang: effective}
	if tree.RootNode().HasError() {
		// A partial tree is still usable (tree-sitter is error-tolerant) but
		// callers should know the file didn't parse cleanly; we surface it
		// as a warning-level error while still returning the usable tree.
		return res, errs.New(errs.ErrorTypeParse, "parse", path, fmt.Errorf("syntax errors in parse tree"))
	}
	return res, nil
}
