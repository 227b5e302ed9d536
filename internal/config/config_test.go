package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Embeddings.Model, cfg.Embeddings.Model)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[embeddings]
model = "custom-model"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Embeddings.Model)
	assert.Equal(t, Default().Embeddings.Dimensions, cfg.Embeddings.Dimensions)
}

func TestIsExcludedMatchesDoubleStarGlobs(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsExcluded("vendor/pkg/foo.go"))
	assert.True(t, cfg.IsExcluded("a/b/node_modules/x.js"))
	assert.False(t, cfg.IsExcluded("internal/foo.go"))
}

func TestLanguageForFile(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "python", cfg.LanguageForFile("foo/bar.py"))
	assert.Equal(t, "go", cfg.LanguageForFile("foo/bar.go"))
	assert.Equal(t, "", cfg.LanguageForFile("foo/bar.unknown"))
}

func TestFindProjectRootWalksUpToMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".codelibrarian"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := FindProjectRoot(nested)
	assert.Equal(t, root, found)
}
