package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func TestDetectCommunitiesSeparatesDisconnectedCliques(t *testing.T) {
	g := New([]int64{1, 2, 3, 4, 5, 6}, []struct {
		Source, Target int64
		Kind           string
	}{
		edge(1, 2, "call"), edge(2, 1, "call"), edge(2, 3, "call"), edge(3, 1, "call"),
		edge(4, 5, "call"), edge(5, 4, "call"), edge(5, 6, "call"), edge(6, 4, "call"),
	})

	assign := g.DetectCommunities(42)
	require.Len(t, assign, 6)
	assert.Equal(t, assign[1], assign[2])
	assert.Equal(t, assign[2], assign[3])
	assert.Equal(t, assign[4], assign[5])
	assert.Equal(t, assign[5], assign[6])
	assert.NotEqual(t, assign[1], assign[4])
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	g := New(nil, nil)
	assert.Nil(t, g.DetectCommunities(42))
}

func TestClusterLabelPicksHighestPageRankAnchor(t *testing.T) {
	members := []model.Symbol{
		{ID: 1, FileID: 10, Name: "Widget", Kind: model.KindStruct},
		{ID: 2, FileID: 10, Name: "helper", Kind: model.KindFunction},
	}
	filePaths := map[int64]string{10: "internal/widgets/widget.go"}
	metrics := map[int64]*Metrics{
		1: {PageRank: 0.5},
		2: {PageRank: 0.9},
	}

	label := ClusterLabel(members, filePaths, metrics, 100)
	assert.Equal(t, "widgets/Widget", label)
}

func TestClusterLabelFallsBackToAnyKindSymbolWhenNoAnchor(t *testing.T) {
	members := []model.Symbol{
		{ID: 1, FileID: 10, Name: "helper", Kind: model.KindFunction},
	}
	filePaths := map[int64]string{10: "internal/util/helper.go"}

	label := ClusterLabel(members, filePaths, map[int64]*Metrics{}, 100)
	assert.Equal(t, "util/helper", label)
}

func TestClusterLabelMegaClusterMergesStemmedDirectories(t *testing.T) {
	members := make([]model.Symbol, 0, 120)
	filePaths := map[int64]string{}
	for i := int64(0); i < 60; i++ {
		members = append(members, model.Symbol{ID: i, FileID: i, Kind: model.KindFunction})
		filePaths[i] = "internal/worker/a.go"
	}
	for i := int64(60); i < 120; i++ {
		members = append(members, model.Symbol{ID: i, FileID: i, Kind: model.KindFunction})
		filePaths[i] = "internal/workers/b.go"
	}

	label := ClusterLabel(members, filePaths, map[int64]*Metrics{}, 150)
	assert.Equal(t, "worker 100%", label)
}

func TestClusterLabelEmptyMembers(t *testing.T) {
	assert.Equal(t, "", ClusterLabel(nil, nil, nil, 0))
}
