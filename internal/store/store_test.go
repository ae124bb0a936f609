package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	st, err := Open(dbPath, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenCreatesSchemaAndIsReusable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	st, err := Open(dbPath, false)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2, err := Open(dbPath, false)
	require.NoError(t, err)
	defer st2.Close()

	hashes, err := st2.ExistingFileHashes()
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestUpsertFileReplacesExistingRowByPath(t *testing.T) {
	st := openTestStore(t)

	var firstID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		id, err := UpsertFile(tx, model.File{Path: "a.go", Language: "go", Hash: 1, MTime: time.Unix(100, 0), LineCount: 5})
		firstID = id
		return err
	}))

	var secondID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		id, err := UpsertFile(tx, model.File{Path: "a.go", Language: "go", Hash: 2, MTime: time.Unix(200, 0), LineCount: 9})
		secondID = id
		return err
	}))

	assert.NotEqual(t, firstID, secondID)

	hashes, err := st.ExistingFileHashes()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), hashes["a.go"])

	files, err := st.AllFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 9, files[0].LineCount)
}

func TestDeleteFileCascadeRemovesSymbolsAndEdges(t *testing.T) {
	st := openTestStore(t)

	var fileID int64
	var sym1, sym2 int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Language: "go", Hash: 1})
		if err != nil {
			return err
		}
		sym1, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "A", Kind: model.KindFunction})
		if err != nil {
			return err
		}
		sym2, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "B", Kind: model.KindFunction})
		if err != nil {
			return err
		}
		return BatchInsertEdges(tx, []model.Edge{{SourceID: sym1, TargetID: sym2, Kind: model.RefCall}})
	}))

	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return DeleteFileCascade(tx, "a.go")
	}))

	syms, err := st.SymbolsInFile(fileID)
	require.NoError(t, err)
	assert.Empty(t, syms)

	callees, err := st.Callees(sym1)
	require.NoError(t, err)
	assert.Empty(t, callees)
}

func TestBatchInsertEdgesSkipsSelfAndDuplicateEdges(t *testing.T) {
	st := openTestStore(t)

	var fileID, sym1, sym2 int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		sym1, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "A"})
		if err != nil {
			return err
		}
		sym2, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "B"})
		return err
	}))

	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return BatchInsertEdges(tx, []model.Edge{
			{SourceID: sym1, TargetID: sym1, Kind: model.RefCall}, // self-edge, skipped
			{SourceID: sym1, TargetID: sym2, Kind: model.RefCall},
			{SourceID: sym1, TargetID: sym2, Kind: model.RefCall}, // duplicate, ignored
		})
	}))

	edges, err := st.Callees(sym1)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestClearEdgesRemovesEdgesAndFileEdges(t *testing.T) {
	st := openTestStore(t)

	var f1, f2, sym1, sym2 int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		f1, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		f2, err = UpsertFile(tx, model.File{Path: "b.go", Hash: 2})
		if err != nil {
			return err
		}
		sym1, err = InsertSymbol(tx, model.Symbol{FileID: f1, Name: "A"})
		if err != nil {
			return err
		}
		sym2, err = InsertSymbol(tx, model.Symbol{FileID: f2, Name: "B"})
		if err != nil {
			return err
		}
		if err := BatchInsertEdges(tx, []model.Edge{{SourceID: sym1, TargetID: sym2, Kind: model.RefCall}}); err != nil {
			return err
		}
		return BatchInsertFileEdges(tx, []model.FileEdge{{SourceFileID: f1, TargetFileID: f2, Kind: "imports", SymbolCount: 1}})
	}))

	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return ClearEdges(tx)
	}))

	callees, err := st.Callees(sym1)
	require.NoError(t, err)
	assert.Empty(t, callees)
	importees, err := st.Importees(f1)
	require.NoError(t, err)
	assert.Empty(t, importees)
}

func TestUpsertFileStatsPreservesChurnColumns(t *testing.T) {
	st := openTestStore(t)

	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		if err := UpsertFileStats(tx, fileID, 1.5); err != nil {
			return err
		}
		// Simulate an external git-history collector populating churn data.
		_, err = tx.Exec(`UPDATE file_stats SET commit_count = 7, total_churn = 42, distinct_authors = 3 WHERE file_id = ?`, fileID)
		return err
	}))

	// A second indexing run's complexity update must not wipe the churn
	// columns written by the collector.
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return UpsertFileStats(tx, fileID, 2.25)
	}))

	var complexity float64
	var commitCount, totalChurn, distinctAuthors int
	require.NoError(t, st.DB().QueryRow(
		`SELECT complexity, commit_count, total_churn, distinct_authors FROM file_stats WHERE file_id = ?`, fileID,
	).Scan(&complexity, &commitCount, &totalChurn, &distinctAuthors))

	assert.Equal(t, 2.25, complexity)
	assert.Equal(t, 7, commitCount)
	assert.Equal(t, 42, totalChurn)
	assert.Equal(t, 3, distinctAuthors)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := openTestStore(t)

	err := st.WithTx(func(tx *sql.Tx) error {
		if _, err := UpsertFile(tx, model.File{Path: "a.go", Hash: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.Error(t, err)

	hashes, err := st.ExistingFileHashes()
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
