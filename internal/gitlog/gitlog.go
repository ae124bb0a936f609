// Package gitlog reads the auxiliary git-history tables the Store defines
// but this core does not populate (spec §6): git_commits, git_file_changes,
// file_stats' churn columns, and git_cochange. A separate, optional
// collector process is expected to write these rows; this package is only
// the read side, grounded on the same query style as
// internal/store/queries.go.
package gitlog

import (
	"database/sql"
	"time"

	"github.com/river-mounts/roam-code-sf/internal/store"
)

// Commit is one row of git_commits.
type Commit struct {
	ID        int64
	Author    string
	Message   string
	Timestamp time.Time
}

// FileChange is one row of git_file_changes.
type FileChange struct {
	CommitID     int64
	FileID       int64
	LinesAdded   int
	LinesRemoved int
}

// Cochange is one row of git_cochange: how often two files changed in the
// same commit.
type Cochange struct {
	FileIDA, FileIDB int64
	Count            int
}

// Churn is the git-derived half of file_stats (commit_count, total_churn,
// distinct_authors); complexity is populated by the indexer itself
// (internal/orchestrator/complexity.go), not by the collector.
type Churn struct {
	FileID          int64
	CommitCount     int
	TotalChurn      int
	DistinctAuthors int
}

// CommitsTouchingFile returns every commit that changed fileID, most recent
// first.
func CommitsTouchingFile(st *store.Store, fileID int64) ([]Commit, error) {
	rows, err := st.DB().Query(`
		SELECT c.id, c.author, c.message, c.timestamp
		FROM git_commits c
		JOIN git_file_changes fc ON fc.commit_id = c.id
		WHERE fc.file_id = ?
		ORDER BY c.timestamp DESC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Commit
	for rows.Next() {
		var c Commit
		var ts int64
		if err := rows.Scan(&c.ID, &c.Author, &c.Message, &ts); err != nil {
			return nil, err
		}
		c.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChangesForCommit returns every file_changes row for one commit.
func ChangesForCommit(st *store.Store, commitID int64) ([]FileChange, error) {
	rows, err := st.DB().Query(`
		SELECT commit_id, file_id, lines_added, lines_removed
		FROM git_file_changes WHERE commit_id = ?`, commitID)
	if err != nil {
		return nil, err
	}
	return scanChanges(rows)
}

func scanChanges(rows *sql.Rows) ([]FileChange, error) {
	defer rows.Close()
	var out []FileChange
	for rows.Next() {
		var fc FileChange
		if err := rows.Scan(&fc.CommitID, &fc.FileID, &fc.LinesAdded, &fc.LinesRemoved); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// ChurnForFile returns the churn-side file_stats row for fileID, or nil if
// no collector has run yet.
func ChurnForFile(st *store.Store, fileID int64) (*Churn, error) {
	row := st.DB().QueryRow(`
		SELECT file_id, commit_count, total_churn, distinct_authors
		FROM file_stats WHERE file_id = ?`, fileID)
	var c Churn
	if err := row.Scan(&c.FileID, &c.CommitCount, &c.TotalChurn, &c.DistinctAuthors); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// TopCochanges returns the n files most often changed in the same commit
// as fileID, ranked by cochange_count descending.
func TopCochanges(st *store.Store, fileID int64, n int) ([]Cochange, error) {
	rows, err := st.DB().Query(`
		SELECT file_id_a, file_id_b, cochange_count
		FROM git_cochange
		WHERE file_id_a = ? OR file_id_b = ?
		ORDER BY cochange_count DESC
		LIMIT ?`, fileID, fileID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Cochange
	for rows.Next() {
		var cc Cochange
		if err := rows.Scan(&cc.FileIDA, &cc.FileIDB, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}
