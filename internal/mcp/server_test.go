package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/config"
)

const serverFixture = `package sample

// Runner executes jobs.
type Runner struct{}

// Run starts the job loop.
func (r *Runner) Run() {
	r.validate()
}

func (r *Runner) validate() {}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.go"), []byte(serverFixture), 0o644))

	cfg := config.Default()
	cfg.Index.Root = dir
	cfg.Embeddings.Enabled = false
	cfg.Database.Path = filepath.Join(dir, ".codelibrarian", "index.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.DatabasePath()), 0o755))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewServer(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })

	return s
}

func callTool(t *testing.T, args map[string]interface{}) mcpsdk.CallToolRequest {
	t.Helper()
	return mcpsdk.CallToolRequest{
		Params: mcpsdk.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServerRegistersAllTools(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.engine)
	assert.NotNil(t, s.diagram)
}

func TestHandleIndexCodebaseThenGetStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleIndexCodebase(ctx, callTool(t, map[string]interface{}{"mode": "full"}))
	require.NoError(t, err)
	require.NotNil(t, result)

	status, err := s.handleGetStatus(ctx, callTool(t, nil))
	require.NoError(t, err)
	require.NotNil(t, status)
}

func TestHandleSearchCodeMissingQueryReportsError(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSearchCode(context.Background(), callTool(t, map[string]interface{}{}))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleSearchCodeFindsSymbol(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleIndexCodebase(ctx, callTool(t, map[string]interface{}{"mode": "full"}))
	require.NoError(t, err)

	result, err := s.handleSearchCode(ctx, callTool(t, map[string]interface{}{"query": "Runner"}))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleLookupSymbolMissingNameReportsError(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleLookupSymbol(context.Background(), callTool(t, map[string]interface{}{}))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleGetCallersAfterIndex(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleIndexCodebase(ctx, callTool(t, map[string]interface{}{"mode": "full"}))
	require.NoError(t, err)

	result, err := s.handleGetCallers(ctx, callTool(t, map[string]interface{}{"qualified_name": "validate"}))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestHandleGenerateClassDiagramMissingArgReportsError(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleGenerateClassDiagram(context.Background(), callTool(t, map[string]interface{}{}))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestIntArgFallsBackToDefault(t *testing.T) {
	assert.Equal(t, 5, intArg(map[string]interface{}{}, "depth", 5))
	assert.Equal(t, 3, intArg(map[string]interface{}{"depth": float64(3)}, "depth", 5))
}

func TestStringArgFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "hybrid", stringArg(map[string]interface{}{}, "mode", "hybrid"))
	assert.Equal(t, "semantic", stringArg(map[string]interface{}{"mode": "semantic"}, "mode", "hybrid"))
}
