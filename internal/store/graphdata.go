package store

import (
	"time"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// AllSymbols returns every symbol currently in the index, used by the
// orchestrator to rebuild the in-memory graph after a run (spec §4.6 step 7).
func (s *Store) AllSymbols() ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT ` + symbolColumns + ` FROM symbols`)
	if err != nil {
		return nil, err
	}
	return scanSymbolRows(rows)
}

// AllFiles returns every file row, keyed implicitly by model.File.ID.
func (s *Store) AllFiles() ([]model.File, error) {
	rows, err := s.db.Query(`SELECT id, path, language, hash, mtime, line_count FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.File
	for rows.Next() {
		var f model.File
		var mtime int64
		var hash int64
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &hash, &mtime, &f.LineCount); err != nil {
			return nil, err
		}
		f.Hash = uint64(hash)
		f.MTime = unixTime(mtime)
		out = append(out, f)
	}
	return out, rows.Err()
}
