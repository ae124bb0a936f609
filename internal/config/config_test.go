package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultHasBuiltInExclusions(t *testing.T) {
	cfg := Default("/tmp/project")
	assert.Equal(t, "/tmp/project", cfg.Root)
	assert.Equal(t, 4, cfg.Workers)
	assert.Nil(t, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
	assert.False(t, cfg.FollowSymlinks)
}

func TestLoadKDLReturnsNilWhenAbsent(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLParsesIndexAndGlobBlocks(t *testing.T) {
	dir := t.TempDir()
	body := `index {
    workers 8
    follow_symlinks true
    watch_debounce_ms 500
}
exclude "**/generated/**" "**/*.pb.go"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".roam.kdl"), []byte(body), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.FollowSymlinks)
	assert.Equal(t, 500, cfg.WatchDebounceMs)
	assert.ElementsMatch(t, []string{"**/generated/**", "**/*.pb.go"}, cfg.Exclude)
}

func TestLoadKDLRejectsMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".roam.kdl"), []byte("index { workers"), 0o644))

	_, err := LoadKDL(dir)
	assert.Error(t, err)
}
