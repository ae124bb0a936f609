package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/river-mounts/roam-code-sf/internal/errs"
	"github.com/river-mounts/roam-code-sf/internal/model"
	"github.com/river-mounts/roam-code-sf/internal/store"
)

func TestClassifyPartitionsAddedModifiedRemovedUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "added.go")
	writeFile(t, root, "modified.go")
	writeFile(t, root, "unchanged.go")

	unchangedData, err := os.ReadFile(filepath.Join(root, "unchanged.go"))
	require.NoError(t, err)
	modifiedOldHash := store.ContentHash([]byte("// old content\n"))

	existing := map[string]uint64{
		"modified.go":  modifiedOldHash,
		"unchanged.go": store.ContentHash(unchangedData),
		"removed.go":   store.ContentHash([]byte("// gone\n")),
	}

	var summary errs.RunSummary
	added, modified, removed, unchanged := classify(root,
		[]string{"added.go", "modified.go", "unchanged.go"}, existing, &summary)

	assert.Equal(t, []string{"added.go"}, added)
	assert.Equal(t, []string{"modified.go"}, modified)
	assert.Equal(t, []string{"removed.go"}, removed)
	assert.Equal(t, []string{"unchanged.go"}, unchanged)
	assert.True(t, summary.Empty())
}

func TestClassifyRecordsTransientIOOnUnreadableFile(t *testing.T) {
	root := t.TempDir()
	var summary errs.RunSummary
	added, modified, removed, unchanged := classify(root,
		[]string{"missing.go"}, map[string]uint64{}, &summary)

	assert.Empty(t, added)
	assert.Empty(t, modified)
	assert.Empty(t, removed)
	assert.Empty(t, unchanged)
	assert.Equal(t, 1, summary.TransientIO)
}

func TestBuildGraphWiresSymbolsAndEdges(t *testing.T) {
	symbols := []model.Symbol{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []model.Edge{
		{SourceID: 1, TargetID: 2, Kind: model.RefCall},
		{SourceID: 2, TargetID: 3, Kind: model.RefImport},
	}

	g := buildGraph(symbols, edges)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 1, g.OutDegree(1))
	assert.Equal(t, 1, g.InDegree(3))
}
