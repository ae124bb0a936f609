package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/river-mounts/roam-code-sf/internal/config"
	"github.com/river-mounts/roam-code-sf/internal/errs"
	"github.com/river-mounts/roam-code-sf/internal/lang"
	"github.com/river-mounts/roam-code-sf/internal/model"
	"github.com/river-mounts/roam-code-sf/internal/parsing"
	"github.com/river-mounts/roam-code-sf/internal/store"
)

// fileResult is one file's complete parse+extract outcome, produced in the
// parallel fan-out stage and consumed serially by the Store-writing stage
// (spec §5's two-pass fan-out/fan-in schedule).
type fileResult struct {
	path       string
	fileID     int64
	language   parsing.Language
	source     []byte
	lineCount  int
	complexity float64
	hash       uint64
	symbols    []model.Symbol
	references []model.Reference
}

func workerCount(cfg *config.Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return 4
}

// parseAndExtractAll runs parseAndExtractOne over paths with bounded
// parallelism (golang.org/x/sync/errgroup, grounded on
// rohankatakam-coderisk's internal/ingestion/orchestrator.go worker-pool
// usage). Per-file failures are recorded on summary and the file is either
// dropped (unreadable) or still registered with no symbols (no grammar,
// parse error) — never fatal to the run (spec §7).
func parseAndExtractAll(cfg *config.Config, paths []string, summary *errs.RunSummary) []fileResult {
	if len(paths) == 0 {
		return nil
	}
	slots := make([]*fileResult, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(workerCount(cfg))
	var mu sync.Mutex

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r, ierr := parseAndExtractOne(cfg.Root, p)
			if ierr != nil {
				mu.Lock()
				summary.Record(ierr.Type)
				mu.Unlock()
			}
			if r != nil {
				slots[i] = r
			}
			return nil
		})
	}
	_ = g.Wait() // parseAndExtractOne never returns an error from Go itself

	out := make([]fileResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// parseAndExtractOne parses one file and dispatches to the matching
// extractor. A nil result with a nil error means the extension isn't
// recognized at all (uncounted, spec §7). A non-nil result accompanied by a
// non-nil error means the file is still registered (path/hash/line count)
// but carries no symbols — grammar absence or a parse error, both counted.
func parseAndExtractOne(root, relPath string) (*fileResult, *errs.IndexError) {
	fullPath := filepath.Join(root, relPath)
	res, perr := parsing.ParseFile(fullPath)

	var ierr *errs.IndexError
	if perr != nil {
		ie, ok := perr.(*errs.IndexError)
		if !ok {
			ie = errs.New(errs.ErrorTypeTransientIO, "parse", relPath, perr)
		}
		ierr = ie
	}

	if res == nil && ierr == nil {
		return nil, nil // not a recognized extension
	}
	if ierr != nil && ierr.Type == errs.ErrorTypeTransientIO {
		return nil, ierr // unreadable: nothing to register
	}

	var raw []byte
	language := parsing.LanguageForPath(fullPath)
	if res != nil {
		raw = res.RawSource
		language = res.Language
	} else {
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, errs.New(errs.ErrorTypeTransientIO, "read", relPath, err)
		}
		raw = data
	}

	r := &fileResult{
		path: relPath, language: language, source: raw,
		lineCount: countLines(raw), complexity: complexity(raw),
		hash: store.ContentHash(raw),
	}

	if ierr != nil {
		// Grammar absence or a partial/errored tree: file is registered
		// with no symbols (spec §7 "partial trees are not used").
		return r, ierr
	}

	switch language {
	case parsing.LangSFMeta:
		r.symbols, r.references = lang.ExtractSFMeta(res.Source, relPath)
	case parsing.LangVue, parsing.LangSvelte:
		if ext := lang.For(res.EffectiveLang); ext != nil && res.Tree != nil {
			r.symbols = ext.ExtractSymbols(res.Tree, res.Source, relPath)
			r.references = ext.ExtractReferences(res.Tree, res.Source, relPath)
		}
		if language == parsing.LangVue {
			if tmpl, startLine, ok := parsing.ExtractTemplate(res.RawSource); ok {
				known := make(map[string]bool, len(r.symbols))
				for _, s := range r.symbols {
					known[s.Name] = true
				}
				r.references = append(r.references, lang.ScanTemplateReferences(tmpl, startLine, known, relPath)...)
			}
		}
	default:
		ext := lang.For(language)
		if ext == nil || res.Tree == nil {
			return r, errs.New(errs.ErrorTypeNoGrammar, "extract", relPath, fmt.Errorf("no extractor registered for %s", language))
		}
		r.symbols = ext.ExtractSymbols(res.Tree, res.Source, relPath)
		r.references = ext.ExtractReferences(res.Tree, res.Source, relPath)
	}

	for i := range r.references {
		r.references[i].SourceFile = relPath
	}
	return r, nil
}
