package diagram

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/indexer"
	"github.com/dshills/codelibrarian/internal/storage"
)

const diagramFixture = `package sample

type Base struct{}

func (b *Base) Common() {}

type Runner struct {
	Base
}

func (r *Runner) Run() {
	r.Common()
	r.step()
}

func (r *Runner) step() {}
`

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.go"), []byte(diagramFixture), 0o644))

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false

	idx := indexer.New(store, nil, cfg)
	_, err = idx.Run(context.Background(), indexer.ModeFull)
	require.NoError(t, err)

	return store
}

func TestClassDiagramIncludesInheritanceArrow(t *testing.T) {
	store := newTestStore(t)
	gen := New(store)

	out, err := gen.ClassDiagram(context.Background(), "sample.Runner")
	require.NoError(t, err)
	assert.Contains(t, out, "classDiagram")
	assert.Contains(t, out, "<|--")
	assert.Contains(t, out, "Run(")
}

func TestClassDiagramUnknownClassReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	gen := New(store)

	out, err := gen.ClassDiagram(context.Background(), "sample.NoSuchClass")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCallGraphRendersFlowchart(t *testing.T) {
	store := newTestStore(t)
	gen := New(store)

	out, err := gen.CallGraph(context.Background(), "sample.Runner.Run", 2, "callees")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart LR")
	assert.Contains(t, out, "-->")
}

func TestSanitizeIDStableAndUnique(t *testing.T) {
	a := sanitizeID("foo.bar")
	b := sanitizeID("foo_bar")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, sanitizeID("foo.bar"))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Run", shortName("sample.Runner.Run"))
	assert.Equal(t, "sample", shortName("sample"))
}
