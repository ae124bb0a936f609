package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPathShortestDirected(t *testing.T) {
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 3, "call"), edge(1, 3, "import"), edge(3, 4, "call"),
	})

	path := g.FindPath(1, 4)
	require.NotNil(t, path)
	assert.Equal(t, []int64{1, 3, 4}, path)
}

func TestFindPathUndirectedFallback(t *testing.T) {
	g := New([]int64{1, 2, 3}, []struct {
		Source, Target int64
		Kind           string
	}{edge(2, 1, "call"), edge(2, 3, "call")})

	// No directed path from 1 to 3; both hops exist only in reverse.
	path := g.FindPath(1, 3)
	require.NotNil(t, path)
	assert.Equal(t, int64(1), path[0])
	assert.Equal(t, int64(3), path[len(path)-1])
}

func TestFindPathNoPathReturnsNil(t *testing.T) {
	g := New([]int64{1, 2}, nil)
	assert.Nil(t, g.FindPath(1, 2))
}

func TestFindPathUnknownNodeReturnsNil(t *testing.T) {
	g := New([]int64{1, 2}, []struct {
		Source, Target int64
		Kind           string
	}{edge(1, 2, "call")})
	assert.Nil(t, g.FindPath(1, 99))
}

func TestFindKPathsReturnsDistinctRoutes(t *testing.T) {
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 4, "call"),
		edge(1, 3, "import"), edge(3, 4, "import"),
	})

	paths := g.FindKPaths(1, 4, 2)
	require.Len(t, paths, 2)
	assert.NotEqual(t, paths[0].NodeIDs, paths[1].NodeIDs)
	// The all-call route should score at least as well as the all-import one.
	assert.GreaterOrEqual(t, paths[0].Quality, paths[1].Quality)
}

func TestCouplingLabelAllCallIsStrong(t *testing.T) {
	assert.Equal(t, "strong", couplingLabel([]string{"call", "call"}))
}

func TestCouplingLabelMixedIsModerate(t *testing.T) {
	assert.Equal(t, "moderate", couplingLabel([]string{"call", "import"}))
}

func TestCouplingLabelTemplateOnlyIsWeak(t *testing.T) {
	assert.Equal(t, "weak", couplingLabel([]string{"template"}))
}
