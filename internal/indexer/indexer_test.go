package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

func writeFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const sampleGoSource = `package sample

func Foo() {
	Bar()
}

func Bar() {}
`

func TestRunFullModeIndexesFilesAndResolvesCalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoSource)

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false

	idx := New(store, nil, cfg)
	stats, err := idx.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.GreaterOrEqual(t, stats.SymbolsExtracted, 2)
	assert.Equal(t, 1, stats.CallEdges)

	foo, err := store.GetSymbolByQualifiedName(context.Background(), "sample.Foo")
	require.NoError(t, err)
	callees, err := store.GetCallees(context.Background(), foo.ID, 1)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, "sample.Bar", callees[0].QualifiedName)
}

func TestRunIncrementalSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoSource)

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false

	idx := New(store, nil, cfg)
	_, err = idx.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	stats, err := idx.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
}

func TestRunFullModeDeletesVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoSource)
	writeFile(t, dir, "gone.go", "package sample\n\nfunc Gone() {}\n")

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false

	idx := New(store, nil, cfg)
	_, err = idx.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	_, err = store.GetSymbolByQualifiedName(context.Background(), "sample.Gone")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "gone.go")))

	stats, err := idx.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesDeleted)

	_, err = store.GetFileByPath(context.Background(), "gone.go")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = store.GetSymbolByQualifiedName(context.Background(), "sample.Gone")
	assert.Error(t, err)
}

func TestRunSucceedsWhenEmbeddingEndpointFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoSource)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = true
	cfg.Embeddings.APIURL = server.URL
	cfg.Embeddings.Dimensions = 4
	cfg.Embeddings.BatchSize = 10
	cfg.Embeddings.MaxChars = 2000

	embed := embedder.NewClient(cfg.Embeddings, nil)
	idx := New(store, embed, cfg)

	stats, err := idx.Run(context.Background(), ModeFull)
	require.NoError(t, err, "an embedding endpoint failure must abort the embedding phase, not the whole pass")
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.EmbeddedSymbols)

	_, err = store.GetSymbolByQualifiedName(context.Background(), "sample.Foo")
	require.NoError(t, err, "symbols must still be indexed and queryable despite the embedding failure")
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoSource)

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false

	idx := New(store, nil, cfg)
	require.True(t, idx.lock.TryAcquire())
	defer idx.lock.Release()

	_, err = idx.Run(context.Background(), ModeFull)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
