package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/river-mounts/roam-code-sf/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("// content\n"), 0o644))
}

func TestDiscoverAppliesExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, "node_modules/pkg/index.js")
	writeFile(t, root, "vendor/dep/dep.go")

	cfg := config.Default(root)
	paths, err := Discover(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestDiscoverHonorsIncludeAllowlist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go")
	writeFile(t, root, "docs/readme.md")

	cfg := config.Default(root)
	cfg.Include = []string{"src/**"}
	paths, err := Discover(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.go"}, paths)
}

func TestDiscoverReturnsSortedPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go")
	writeFile(t, root, "a.go")
	writeFile(t, root, "m/b.go")

	cfg := config.Default(root)
	paths, err := Discover(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "m/b.go", "z.go"}, paths)
}

func TestDiscoverSkipsSymlinksByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real/a.go")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	cfg := config.Default(root)
	paths, err := Discover(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"real/a.go"}, paths)
}
