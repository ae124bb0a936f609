package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func seedSymbol(t *testing.T, st *Store, fileID int64, sym model.Symbol) int64 {
	t.Helper()
	var id int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		sym.FileID = fileID
		id, err = InsertSymbol(tx, sym)
		return err
	}))
	return id
}

func TestSymbolsByNameAndQualifiedName(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))
	seedSymbol(t, st, fileID, model.Symbol{Name: "Run", QualifiedName: "pkg.Run", Kind: model.KindFunction})

	byName, err := st.SymbolsByName("Run")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "pkg.Run", byName[0].QualifiedName)

	byQ, err := st.SymbolByQualifiedName("pkg.Run")
	require.NoError(t, err)
	require.NotNil(t, byQ)
	assert.Equal(t, "Run", byQ.Name)

	none, err := st.SymbolByQualifiedName("pkg.Missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindSymbolIDsFallsBackThroughTiers(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))
	seedSymbol(t, st, fileID, model.Symbol{Name: "Handler", QualifiedName: "pkg.Handler", Kind: model.KindStruct})

	exact, err := st.FindSymbolIDs("pkg.Handler")
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "Handler", exact[0].Name)

	byName, err := st.FindSymbolIDs("Handler")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	fuzzy, err := st.FindSymbolIDs("Handlr")
	require.NoError(t, err)
	require.Len(t, fuzzy, 1)
	assert.Equal(t, "Handler", fuzzy[0].Name)
}

func TestCallersAndCallees(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))
	a := seedSymbol(t, st, fileID, model.Symbol{Name: "A"})
	b := seedSymbol(t, st, fileID, model.Symbol{Name: "B"})
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return BatchInsertEdges(tx, []model.Edge{{SourceID: a, TargetID: b, Kind: model.RefCall}})
	}))

	callees, err := st.Callees(a)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, b, callees[0].TargetID)

	callers, err := st.Callers(b)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, a, callers[0].SourceID)
}

func TestTopByMetricOrdersDescending(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))
	low := seedSymbol(t, st, fileID, model.Symbol{Name: "Low"})
	high := seedSymbol(t, st, fileID, model.Symbol{Name: "High"})

	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return BatchInsertMetrics(tx, []model.GraphMetrics{
			{SymbolID: low, PageRank: 0.1},
			{SymbolID: high, PageRank: 0.9},
		})
	}))

	syms, metrics, err := st.TopByMetric(SortPageRank, 10)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "High", syms[0].Name)
	assert.Equal(t, 0.9, metrics[0].PageRank)
}

func TestTopByMetricRejectsUnknownSort(t *testing.T) {
	st := openTestStore(t)
	_, _, err := st.TopByMetric(MetricSort("bogus"), 10)
	assert.Error(t, err)
}

func TestClusterMembersAndDirectoryMismatch(t *testing.T) {
	st := openTestStore(t)
	var f1, f2 int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		f1, err = UpsertFile(tx, model.File{Path: "pkg/a/one.go", Hash: 1})
		if err != nil {
			return err
		}
		f2, err = UpsertFile(tx, model.File{Path: "pkg/b/two.go", Hash: 2})
		return err
	}))
	s1 := seedSymbol(t, st, f1, model.Symbol{Name: "One"})
	s2 := seedSymbol(t, st, f2, model.Symbol{Name: "Two"})

	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		return BatchInsertClusters(tx, []model.Cluster{
			{SymbolID: s1, ClusterID: 1, ClusterLabel: "mixed"},
			{SymbolID: s2, ClusterID: 1, ClusterLabel: "mixed"},
		})
	}))

	members, err := st.ClusterMembers(1)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	mismatches, err := st.ClusterDirectoryMismatches(2, 0.9)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, 1, mismatches[0].ClusterID)
	assert.Equal(t, 0.5, mismatches[0].DominantShare)
}

func TestHydrateCyclesAndHydratePath(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		return err
	}))
	a := seedSymbol(t, st, fileID, model.Symbol{Name: "A"})
	b := seedSymbol(t, st, fileID, model.Symbol{Name: "B"})

	cycles, err := st.HydrateCycles([][]int64{{a, b}})
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].Members, 2)
	assert.Equal(t, []string{"a.go"}, cycles[0].Files)

	path, err := st.HydratePath([]int64{a, b})
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "A", path[0].Name)
	assert.Equal(t, "B", path[1].Name)
}
