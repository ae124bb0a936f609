package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStronglyConnectedComponentsFindsCycle(t *testing.T) {
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 3, "call"), edge(3, 1, "call"), edge(3, 4, "call"),
	})

	sccs := g.StronglyConnectedComponents(2)
	require.Len(t, sccs, 1)
	assert.ElementsMatch(t, []int64{1, 2, 3}, sccs[0])
}

func TestCondensationCollapsesCycleToOneComponent(t *testing.T) {
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 1, "call"), edge(2, 3, "call"), edge(3, 4, "call"),
	})

	compOf, components, condEdges := g.Condensation()
	assert.Equal(t, compOf[1], compOf[2])
	assert.NotEqual(t, compOf[2], compOf[3])
	assert.Len(t, components, 3) // {1,2}, {3}, {4}

	cycleComp := compOf[1]
	_, ok := condEdges[cycleComp]
	assert.True(t, ok, "cycle component should have an outgoing condensed edge to {3}'s component")
}
