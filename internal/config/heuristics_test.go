package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHeuristicsZoneWeight(t *testing.T) {
	h := DefaultHeuristics()
	assert.Equal(t, 1.5, h.ZoneWeight("internal/core/engine.go"))
	assert.Equal(t, 0.3, h.ZoneWeight("pkg/foo_test.go"))
	assert.Equal(t, 1.0, h.ZoneWeight("pkg/foo/bar.go"))
}

func TestDefaultHeuristicsDomainWeightIsCaseInsensitive(t *testing.T) {
	h := DefaultHeuristics()
	assert.Equal(t, 2.5, h.DomainWeight("Payment"))
	assert.Equal(t, 1.0, h.DomainWeight("unrelated"))
}

func TestHasAPIPrefix(t *testing.T) {
	h := DefaultHeuristics()
	assert.True(t, h.HasAPIPrefix("PublicService.Run"))
	assert.False(t, h.HasAPIPrefix("internalHelper"))
}

func TestIsUtilityPath(t *testing.T) {
	h := DefaultHeuristics()
	assert.True(t, h.IsUtilityPath("internal/utils/strings.go"))
	assert.False(t, h.IsUtilityPath("internal/billing/invoice.go"))
}

func TestLoadHeuristicsMergesOverrideFiles(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ".roam")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "domain-weights.json"),
		[]byte(`{"Payment": 9.0, "custom": 3.0}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "path-zones.json"),
		[]byte(`{"generated": {"patterns": ["**/*.gen.go"], "weight": 0.1}}`), 0o644))

	h, err := LoadHeuristics(root)
	require.NoError(t, err)
	assert.Equal(t, 9.0, h.DomainWeight("payment"))
	assert.Equal(t, 3.0, h.DomainWeight("custom"))
	assert.Equal(t, 2.0, h.DomainWeight("auth")) // untouched default survives the merge
	assert.Equal(t, 0.1, h.ZoneWeight("foo.gen.go"))
	assert.Equal(t, 1.5, h.ZoneWeight("internal/core/x.go")) // default zone still present
}

func TestLoadHeuristicsNoOverrideFilesReturnsDefaults(t *testing.T) {
	h, err := LoadHeuristics(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultHeuristics().DomainWeights, h.DomainWeights)
}
