// Package orchestrator coordinates one indexing run (spec §4.6): discovery,
// incremental change detection, per-file parse+extract, reference
// resolution, graph construction, and metric/cluster persistence.
package orchestrator

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/river-mounts/roam-code-sf/internal/config"
)

// Discover walks cfg.Root and returns every repository-relative path that
// survives the include/exclude glob filters, forward-slash normalized and
// sorted for deterministic processing order. Symlinked directories are only
// descended into when cfg.FollowSymlinks is set, matching the teacher's
// watcher.addWatches cycle guard in spirit (grep
// internal/indexing/watcher.go).
func Discover(cfg *config.Config) ([]string, error) {
	var out []string
	visited := make(map[string]bool)

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, err := filepath.Rel(cfg.Root, full)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			info, err := entry.Info()
			if err != nil {
				continue
			}
			isDir := entry.IsDir()
			if info.Mode()&os.ModeSymlink != 0 {
				if !cfg.FollowSymlinks {
					continue
				}
				target, err := filepath.EvalSymlinks(full)
				if err != nil {
					continue
				}
				if visited[target] {
					continue
				}
				visited[target] = true
				targetInfo, err := os.Stat(target)
				if err != nil {
					continue
				}
				isDir = targetInfo.IsDir()
			}

			if isDir {
				if excluded(rel+"/", cfg.Exclude) {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}

			if excluded(rel, cfg.Exclude) {
				continue
			}
			if len(cfg.Include) > 0 && !included(rel, cfg.Include) {
				continue
			}
			out = append(out, rel)
		}
		return nil
	}

	if err := walk(cfg.Root); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func included(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
