package searcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/indexer"
	"github.com/dshills/codelibrarian/internal/rewriter"
	"github.com/dshills/codelibrarian/internal/storage"
)

const fixtureSource = `package sample

// Runner executes jobs.
type Runner struct{}

// Run starts the job loop.
func (r *Runner) Run() {
	r.validate()
}

func (r *Runner) validate() {}

func TestHelperUnrelated() {}
`

func newTestEngine(t *testing.T, embed *embedder.Client, rewrite *rewriter.Client) (*Engine, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.go"), []byte(fixtureSource), 0o644))

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = embed != nil

	idx := indexer.New(store, embed, cfg)
	_, err = idx.Run(context.Background(), indexer.ModeFull)
	require.NoError(t, err)

	return New(store, embed, rewrite, 0.5), store
}

func TestSearchGraphIntentRoutesToCallers(t *testing.T) {
	eng, _ := newTestEngine(t, nil, nil)

	results, err := eng.Search(context.Background(), Request{Query: "callers of validate"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sample.Runner.Run", results[0].Symbol.QualifiedName)
	assert.Equal(t, float64(1.0), results[0].Score)
}

func TestSearchHybridFindsFullTextMatch(t *testing.T) {
	eng, _ := newTestEngine(t, nil, nil)

	results, err := eng.Search(context.Background(), Request{Query: "Runner"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	found := false
	for _, r := range results {
		if r.Symbol.QualifiedName == "sample.Runner" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLookupSymbolExactMatch(t *testing.T) {
	eng, _ := newTestEngine(t, nil, nil)

	matches, err := eng.LookupSymbol(context.Background(), "sample.Runner")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "sample.Runner", matches[0].QualifiedName)
}

func fakeChatServer(t *testing.T, terms []string, focus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, err := json.Marshal(map[string]any{"terms": terms, "focus": focus})
		require.NoError(t, err)
		payload := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": string(content)}}},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestSearchForceRewriteMergesResults(t *testing.T) {
	srv := fakeChatServer(t, []string{"Runner", "validate"}, "all")
	defer srv.Close()
	rw := rewriter.NewClient(srv.URL, "test-model", 0)

	eng, _ := newTestEngine(t, nil, rw)

	results, err := eng.Search(context.Background(), Request{Query: "Runner", ForceRewrite: true})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchZeroResultFallbackConsultsRewriter(t *testing.T) {
	srv := fakeChatServer(t, []string{"Runner"}, "implementation")
	defer srv.Close()
	rw := rewriter.NewClient(srv.URL, "test-model", 0)

	eng, _ := newTestEngine(t, nil, rw)

	results, err := eng.Search(context.Background(), Request{Query: "zzz_no_such_token_zzz"})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchCachesRepeatedQuery(t *testing.T) {
	eng, store := newTestEngine(t, nil, nil)

	first, err := eng.Search(context.Background(), Request{Query: "Runner"})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Delete everything directly (bypassing Engine.InvalidateCache) so a
	// cache hit is the only way the second call could still find results.
	files, err := store.ListFiles(context.Background())
	require.NoError(t, err)
	for _, f := range files {
		require.NoError(t, store.DeleteFile(context.Background(), f.ID))
	}

	second, err := eng.Search(context.Background(), Request{Query: "Runner"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	eng.InvalidateCache()
	third, err := eng.Search(context.Background(), Request{Query: "Runner"})
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile("internal/foo/sample_test.go"))
	assert.False(t, isTestFile("internal/foo/sample.go"))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
}
