package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolveCallWithinSameFile(t *testing.T) {
	fileByID := map[int64]string{1: "pkg/service.go"}
	symbols := []model.Symbol{
		{ID: 1, FileID: 1, Name: "handle", QualifiedName: "handle", LineStart: 1, LineEnd: 5, IsExported: true},
		{ID: 2, FileID: 1, Name: "validate", QualifiedName: "validate", LineStart: 7, LineEnd: 10, IsExported: false},
	}
	refs := []model.Reference{
		{SourceName: "handle", SourceFile: "pkg/service.go", TargetName: "validate", Kind: model.RefCall, Line: 3},
	}

	edges := Resolve(refs, symbols, fileByID)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(1), edges[0].SourceID)
	assert.Equal(t, int64(2), edges[0].TargetID)
	assert.Equal(t, model.RefCall, edges[0].Kind)
}

func TestResolvePrefersSameDirectoryOverDistantFile(t *testing.T) {
	fileByID := map[int64]string{
		1: "pkg/a/caller.go",
		2: "pkg/a/helper.go",
		3: "pkg/b/helper.go",
	}
	symbols := []model.Symbol{
		{ID: 1, FileID: 1, Name: "run", QualifiedName: "run", LineStart: 1, LineEnd: 5},
		{ID: 2, FileID: 2, Name: "Helper", QualifiedName: "Helper", IsExported: true, LineStart: 1, LineEnd: 3},
		{ID: 3, FileID: 3, Name: "Helper", QualifiedName: "Helper", IsExported: true, LineStart: 1, LineEnd: 3},
	}
	refs := []model.Reference{
		{SourceName: "run", SourceFile: "pkg/a/caller.go", TargetName: "Helper", Kind: model.RefCall, Line: 2},
	}

	edges := Resolve(refs, symbols, fileByID)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(2), edges[0].TargetID)
}

func TestResolveSkipsUnresolvableReference(t *testing.T) {
	fileByID := map[int64]string{1: "pkg/service.go"}
	symbols := []model.Symbol{
		{ID: 1, FileID: 1, Name: "handle", LineStart: 1, LineEnd: 5},
	}
	refs := []model.Reference{
		{SourceName: "handle", SourceFile: "pkg/service.go", TargetName: "doesNotExist", Kind: model.RefCall, Line: 3},
	}
	assert.Empty(t, Resolve(refs, symbols, fileByID))
}

func TestResolveSkipsSelfEdge(t *testing.T) {
	fileByID := map[int64]string{1: "pkg/service.go"}
	symbols := []model.Symbol{
		{ID: 1, FileID: 1, Name: "recurse", QualifiedName: "recurse", LineStart: 1, LineEnd: 10},
	}
	refs := []model.Reference{
		{SourceName: "recurse", SourceFile: "pkg/service.go", TargetName: "recurse", Kind: model.RefCall, Line: 5},
	}
	assert.Empty(t, Resolve(refs, symbols, fileByID))
}

func TestResolveSalesforceApexImport(t *testing.T) {
	fileByID := map[int64]string{
		1: "lwc/myComponent/myComponent.js",
		2: "classes/AccountController.cls",
		3: "classes/OpportunityController.cls",
	}
	symbols := []model.Symbol{
		{ID: 1, FileID: 1, Name: "connectedCallback", QualifiedName: "connectedCallback", LineStart: 1, LineEnd: 5},
		{ID: 2, FileID: 2, Name: "getAccounts", QualifiedName: "AccountController.getAccounts", IsExported: true, LineStart: 1, LineEnd: 3},
		// Decoy: same method name in an unrelated Apex class, only
		// distinguishable from the real target via the import specifier.
		{ID: 3, FileID: 3, Name: "getAccounts", QualifiedName: "OpportunityController.getAccounts", IsExported: true, LineStart: 1, LineEnd: 3},
	}
	refs := []model.Reference{
		{
			SourceName: "connectedCallback", SourceFile: "lwc/myComponent/myComponent.js",
			TargetName: "getAccounts", Kind: model.RefCall, Line: 2,
			ImportPath: "@salesforce/apex/AccountController.getAccounts",
		},
		{
			SourceFile: "lwc/myComponent/myComponent.js", Kind: model.RefImport,
			TargetName: "getAccounts", ImportPath: "@salesforce/apex/AccountController.getAccounts",
		},
	}

	// An LWC import of an Apex method produces two distinct-kind edges to
	// the same resolved symbol: the import binding itself, and the call
	// site that invokes it.
	edges := Resolve(refs, symbols, fileByID)
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, int64(2), e.TargetID)
	}
}

func TestBuildFileEdgesAggregatesAndSkipsSameFile(t *testing.T) {
	symbolFile := map[int64]int64{1: 10, 2: 10, 3: 20, 4: 20}
	edges := []model.Edge{
		{SourceID: 1, TargetID: 3, Kind: model.RefCall},
		{SourceID: 2, TargetID: 4, Kind: model.RefCall},
		{SourceID: 1, TargetID: 2, Kind: model.RefCall}, // same file, skipped
	}

	fileEdges := BuildFileEdges(edges, symbolFile)
	require.Len(t, fileEdges, 1)
	assert.Equal(t, int64(10), fileEdges[0].SourceFileID)
	assert.Equal(t, int64(20), fileEdges[0].TargetFileID)
	assert.Equal(t, 2, fileEdges[0].SymbolCount)
	assert.Equal(t, "imports", fileEdges[0].Kind)
}
