package gitlog

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/river-mounts/roam-code-sf/internal/model"
	"github.com/river-mounts/roam-code-sf/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "index.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCommitsTouchingFileOrdersMostRecentFirst(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = store.UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		res, err := tx.Exec(`INSERT INTO git_commits (author, message, timestamp) VALUES (?, ?, ?)`, "alice", "first", 100)
		if err != nil {
			return err
		}
		commit1, err := res.LastInsertId()
		if err != nil {
			return err
		}
		res, err = tx.Exec(`INSERT INTO git_commits (author, message, timestamp) VALUES (?, ?, ?)`, "bob", "second", 200)
		if err != nil {
			return err
		}
		commit2, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO git_file_changes (commit_id, file_id, lines_added, lines_removed) VALUES (?, ?, ?, ?)`,
			commit1, fileID, 10, 2); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO git_file_changes (commit_id, file_id, lines_added, lines_removed) VALUES (?, ?, ?, ?)`,
			commit2, fileID, 5, 1)
		return err
	}))

	commits, err := CommitsTouchingFile(st, fileID)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "bob", commits[0].Author)
	assert.Equal(t, "alice", commits[1].Author)
}

func TestChangesForCommitReturnsAllFilesTouched(t *testing.T) {
	st := openTestStore(t)
	var f1, f2 int64
	var commitID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		f1, err = store.UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		f2, err = store.UpsertFile(tx, model.File{Path: "b.go", Hash: 2})
		if err != nil {
			return err
		}
		res, err := tx.Exec(`INSERT INTO git_commits (author, message, timestamp) VALUES (?, ?, ?)`, "alice", "msg", 100)
		if err != nil {
			return err
		}
		commitID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO git_file_changes (commit_id, file_id, lines_added, lines_removed) VALUES (?, ?, ?, ?)`,
			commitID, f1, 3, 0); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO git_file_changes (commit_id, file_id, lines_added, lines_removed) VALUES (?, ?, ?, ?)`,
			commitID, f2, 1, 1)
		return err
	}))

	changes, err := ChangesForCommit(st, commitID)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestChurnForFileReturnsNilWhenNoCollectorHasRun(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = store.UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))

	churn, err := ChurnForFile(st, fileID)
	require.NoError(t, err)
	assert.Nil(t, churn)
}

func TestChurnForFileReturnsPopulatedRow(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = store.UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		return store.UpsertFileStats(tx, fileID, 1.0)
	}))
	_, err := st.DB().Exec(`UPDATE file_stats SET commit_count = 4, total_churn = 12, distinct_authors = 2 WHERE file_id = ?`, fileID)
	require.NoError(t, err)

	churn, err := ChurnForFile(st, fileID)
	require.NoError(t, err)
	require.NotNil(t, churn)
	assert.Equal(t, 4, churn.CommitCount)
	assert.Equal(t, 12, churn.TotalChurn)
	assert.Equal(t, 2, churn.DistinctAuthors)
}

func TestTopCochangesOrdersByCountDescendingAndMatchesEitherSide(t *testing.T) {
	st := openTestStore(t)
	var a, b, c int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		a, err = store.UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		b, err = store.UpsertFile(tx, model.File{Path: "b.go", Hash: 2})
		if err != nil {
			return err
		}
		c, err = store.UpsertFile(tx, model.File{Path: "c.go", Hash: 3})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO git_cochange (file_id_a, file_id_b, cochange_count) VALUES (?, ?, ?)`, a, b, 3); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO git_cochange (file_id_a, file_id_b, cochange_count) VALUES (?, ?, ?)`, c, a, 9)
		return err
	}))

	top, err := TopCochanges(st, a, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 9, top[0].Count)
	assert.Equal(t, 3, top[1].Count)
}
