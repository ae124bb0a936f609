// Package store persists the model (spec §3) in a single file-backed SQLite
// database inside a .roam/ directory at the project root (spec §4.1).
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

// Store wraps the on-disk index. Every write goes through a WithTx
// transaction. An indexing run (orchestrator.Run) commits its steps in
// several separate transactions, not one, so a run that fails part-way
// keeps the steps it already committed.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex // serializes the single writer, per spec §5
}

// DBPath returns the path of the .roam database file for a project root.
func DBPath(root string) string {
	return filepath.Join(root, ".roam", "index.db")
}

// Open creates the schema on first open and returns a ready Store. readOnly
// opens the database without a write lock, for analysis queries that run
// after the writer releases its lock (spec §5).
func Open(dbPath string, readOnly bool) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if !readOnly {
		db.SetMaxOpenConns(1) // single writer; keeps PRAGMA state consistent
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for packages (graph, resolver callers)
// that need raw read access; mutation still goes through Store's methods.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx runs fn inside a single transaction, rolling it back if fn
// returns an error and committing it otherwise.
func (s *Store) WithTx(fn func(*sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ExistingFileHashes returns path -> hash for every file currently in the
// index, used by the orchestrator's hash-compare step.
func (s *Store) ExistingFileHashes() (map[string]uint64, error) {
	rows, err := s.db.Query(`SELECT path, hash FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]uint64)
	for rows.Next() {
		var path string
		var hash int64
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		out[path] = uint64(hash)
	}
	return out, rows.Err()
}

// FileIDByPath returns every known path -> file id.
func (s *Store) FileIDByPath() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT path, id FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var id int64
		if err := rows.Scan(&path, &id); err != nil {
			return nil, err
		}
		out[path] = id
	}
	return out, rows.Err()
}

// UpsertFile replaces a file atomically: delete then re-insert, as spec §3
// specifies for content-changed files. Returns the new file id.
func UpsertFile(tx *sql.Tx, f model.File) (int64, error) {
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, f.Path); err != nil {
		return 0, fmt.Errorf("delete existing file %s: %w", f.Path, err)
	}
	res, err := tx.Exec(
		`INSERT INTO files (path, language, hash, mtime, line_count) VALUES (?, ?, ?, ?, ?)`,
		f.Path, f.Language, int64(f.Hash), f.MTime.Unix(), f.LineCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file %s: %w", f.Path, err)
	}
	return res.LastInsertId()
}

// DeleteFileCascade removes a file row; ON DELETE CASCADE removes its
// symbols, and removing symbols cascades to their edges.
func DeleteFileCascade(tx *sql.Tx, path string) error {
	_, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path)
	return err
}

// InsertSymbol inserts one symbol row and returns its new id.
func InsertSymbol(tx *sql.Tx, sym model.Symbol) (int64, error) {
	var parentID any
	if sym.ParentID != 0 {
		parentID = sym.ParentID
	}
	res, err := tx.Exec(
		`INSERT INTO symbols (file_id, name, qualified_name, kind, signature,
			line_start, line_end, docstring, visibility, is_exported, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.QualifiedName, string(sym.Kind), sym.Signature,
		sym.LineStart, sym.LineEnd, sym.Docstring, string(sym.Visibility),
		boolToInt(sym.IsExported), parentID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol %s: %w", sym.Name, err)
	}
	return res.LastInsertId()
}

// BatchInsertEdges inserts resolved edges, silently skipping duplicates
// (source, target, kind) per spec's uniqueness invariant.
func BatchInsertEdges(tx *sql.Tx, edges []model.Edge) error {
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO edges (source_id, target_id, kind, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range edges {
		if e.SourceID == e.TargetID {
			continue // self-edges are forbidden (spec §3)
		}
		if _, err := stmt.Exec(e.SourceID, e.TargetID, string(e.Kind), e.Line); err != nil {
			return fmt.Errorf("insert edge %d->%d: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}

// BatchInsertFileEdges inserts aggregated file edges.
func BatchInsertFileEdges(tx *sql.Tx, edges []model.FileEdge) error {
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO file_edges (source_file_id, target_file_id, kind, symbol_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, fe := range edges {
		if fe.SourceFileID == fe.TargetFileID {
			continue
		}
		if _, err := stmt.Exec(fe.SourceFileID, fe.TargetFileID, fe.Kind, fe.SymbolCount); err != nil {
			return fmt.Errorf("insert file edge %d->%d: %w", fe.SourceFileID, fe.TargetFileID, err)
		}
	}
	return nil
}

// ClearEdges deletes all edges and file_edges, used by the orchestrator's
// incremental rebuild-from-scratch step (spec §4.6 step 5).
func ClearEdges(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM edges`); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM file_edges`)
	return err
}

// BatchInsertMetrics truncates and rewrites graph_metrics (derived state,
// spec §3).
func BatchInsertMetrics(tx *sql.Tx, metrics []model.GraphMetrics) error {
	if _, err := tx.Exec(`DELETE FROM graph_metrics`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO graph_metrics (symbol_id, in_degree, out_degree, betweenness, pagerank) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range metrics {
		if _, err := stmt.Exec(m.SymbolID, m.InDegree, m.OutDegree, m.Betweenness, m.PageRank); err != nil {
			return err
		}
	}
	return nil
}

// BatchInsertClusters truncates and rewrites the clusters table.
func BatchInsertClusters(tx *sql.Tx, clusters []model.Cluster) error {
	if _, err := tx.Exec(`DELETE FROM clusters`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO clusters (symbol_id, cluster_id, cluster_label) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range clusters {
		if _, err := stmt.Exec(c.SymbolID, c.ClusterID, c.ClusterLabel); err != nil {
			return err
		}
	}
	return nil
}

// UpsertFileStats inserts or updates only the complexity column for a file.
// A plain INSERT OR REPLACE would zero out commit_count/total_churn/
// distinct_authors on every reindex; those columns belong to the optional
// git-history collector (spec §6) and must survive an indexing run that
// knows nothing about them.
func UpsertFileStats(tx *sql.Tx, fileID int64, complexity float64) error {
	_, err := tx.Exec(`
		INSERT INTO file_stats (file_id, complexity) VALUES (?, ?)
		ON CONFLICT(file_id) DO UPDATE SET complexity = excluded.complexity`,
		fileID, complexity)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
