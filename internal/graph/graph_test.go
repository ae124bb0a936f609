package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func edge(source, target int64, kind string) struct {
	Source, Target int64
	Kind           string
} {
	return struct {
		Source, Target int64
		Kind           string
	}{source, target, kind}
}

func TestNewGraphDegrees(t *testing.T) {
	g := New([]int64{1, 2, 3}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"),
		edge(2, 3, "call"),
		edge(1, 3, "import"),
	})

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.OutDegree(1))
	assert.Equal(t, 1, g.InDegree(3))
	assert.True(t, g.Has(2))
	assert.False(t, g.Has(99))
}

func TestComputeMetricsPageRankSumsToOne(t *testing.T) {
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 3, "call"), edge(3, 1, "call"), edge(1, 4, "call"),
	})

	metrics := g.ComputeMetrics()
	require.Len(t, metrics, 4)
	var total float64
	for _, m := range metrics {
		total += m.PageRank
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestBetweennessHubScoresHighest(t *testing.T) {
	// A star: every path from 2,3,4 to each other goes through 1.
	g := New([]int64{1, 2, 3, 4}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(2, 1, "call"), edge(1, 3, "call"), edge(1, 4, "call"), edge(3, 1, "call"), edge(4, 1, "call"),
	})
	metrics := g.ComputeMetrics()
	for id, m := range metrics {
		if id != 1 {
			assert.LessOrEqual(t, m.Betweenness, metrics[1].Betweenness, "hub node should have >= betweenness of node %d", id)
		}
	}
}

func TestBottleneckSeverityThresholds(t *testing.T) {
	assert.Equal(t, "critical", BottleneckSeverity(95))
	assert.Equal(t, "high", BottleneckSeverity(75))
	assert.Equal(t, "normal", BottleneckSeverity(10))
}

func TestUndirectedFallbackConnectsReverseArc(t *testing.T) {
	g := New([]int64{1, 2}, []struct {
		Source, Target int64
		Kind           string
	}{edge(1, 2, "call")})
	neighbors := g.undirectedNeighbors(2)
	assert.Contains(t, neighbors, int64(1))
}
