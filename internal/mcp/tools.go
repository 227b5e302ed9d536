package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codelibrarian/internal/indexer"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

func toolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf(`{"error": %q}`, err.Error())), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func resultsToMaps(results []types.SearchResult) []map[string]any {
	out := make([]map[string]any, len(results))
	for i, r := range results {
		out[i] = r.ToMap()
	}
	return out
}

func symbolsToMaps(symbols []*types.SymbolRecord) []map[string]any {
	out := make([]map[string]any, len(symbols))
	for i, sym := range symbols {
		out[i] = sym.ToMap()
	}
	return out
}

func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mode := indexer.Mode(stringArg(args, "mode", string(indexer.ModeIncremental)))

	stats, err := s.idx.Run(ctx, mode)
	if err != nil {
		return toolError(err)
	}
	s.engine.InvalidateCache()
	return toolResult(map[string]any{
		"files_indexed":     stats.FilesIndexed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"files_deleted":     stats.FilesDeleted,
		"symbols_extracted": stats.SymbolsExtracted,
		"import_edges":      stats.ImportEdges,
		"call_edges":        stats.CallEdges,
		"inherit_edges":     stats.InheritEdges,
		"embedded_symbols":  stats.EmbeddedSymbols,
		"duration_ms":       stats.Duration.Milliseconds(),
		"errors":            stats.Errors,
	})
}

func (s *Server) handleGetStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{
		"files":    stats.Files,
		"symbols":  stats.Symbols,
		"imports":  stats.Imports,
		"calls":    stats.Calls,
		"inherits": stats.Inherits,
		"embedded": stats.Embedded,
		"root":     s.cfg.IndexRoot(),
		"db_path":  s.cfg.DatabasePath(),
	})
}

func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := stringArg(args, "query", "")
	if query == "" {
		return toolError(fmt.Errorf("query is required"))
	}
	mode := stringArg(args, "mode", "hybrid")

	results, err := s.engine.Search(ctx, searcher.Request{
		Query:        query,
		Limit:        intArg(args, "limit", 10),
		SemanticOnly: mode == "semantic",
		TextOnly:     mode == "fulltext",
		ForceRewrite: boolArg(args, "rewrite", false),
	})
	if err != nil {
		return toolError(err)
	}
	return toolResult(resultsToMaps(results))
}

func (s *Server) handleLookupSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := stringArg(args, "name", "")
	if name == "" {
		return toolError(fmt.Errorf("name is required"))
	}
	symbols, err := s.engine.LookupSymbol(ctx, name)
	if err != nil {
		return toolError(err)
	}
	return toolResult(symbolsToMaps(symbols))
}

func (s *Server) handleGetCallers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	qn := stringArg(args, "qualified_name", "")
	if qn == "" {
		return toolError(fmt.Errorf("qualified_name is required"))
	}
	symbols, err := s.engine.GetCallers(ctx, qn, intArg(args, "depth", 1))
	if err != nil {
		return toolError(err)
	}
	return toolResult(symbolsToMaps(symbols))
}

func (s *Server) handleGetCallees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	qn := stringArg(args, "qualified_name", "")
	if qn == "" {
		return toolError(fmt.Errorf("qualified_name is required"))
	}
	symbols, err := s.engine.GetCallees(ctx, qn, intArg(args, "depth", 1))
	if err != nil {
		return toolError(err)
	}
	return toolResult(symbolsToMaps(symbols))
}

func (s *Server) handleGetFileImports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	filePath := stringArg(args, "file_path", "")
	if filePath == "" {
		return toolError(fmt.Errorf("file_path is required"))
	}
	imports, err := s.engine.GetFileImports(ctx, filePath)
	if err != nil {
		return toolError(err)
	}
	out := make([]map[string]any, len(imports))
	for i, imp := range imports {
		m := map[string]any{"to_module": imp.ToModule, "resolved": imp.ResolvedFileID != nil}
		out[i] = m
	}
	return toolResult(out)
}

func (s *Server) handleListSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	filter := storage.ListSymbolFilter{
		Kind:         types.SymbolKind(stringArg(args, "kind", "")),
		RelativePath: stringArg(args, "file_path", ""),
	}
	symbols, err := s.engine.ListSymbols(ctx, filter)
	if err != nil {
		return toolError(err)
	}
	return toolResult(symbolsToMaps(symbols))
}

func (s *Server) handleGetClassHierarchy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	className := stringArg(args, "class_name", "")
	if className == "" {
		return toolError(fmt.Errorf("class_name is required"))
	}
	hierarchy, err := s.engine.GetClassHierarchy(ctx, className)
	if err != nil {
		return toolError(err)
	}
	if hierarchy == nil {
		return toolResult(map[string]any{"error": "class not found"})
	}
	return toolResult(map[string]any{
		"ancestors":   symbolsToMaps(hierarchy.Ancestors),
		"descendants": symbolsToMaps(hierarchy.Descendants),
	})
}

func (s *Server) handleCountCallers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	qn := stringArg(args, "qualified_name", "")
	if qn == "" {
		return toolError(fmt.Errorf("qualified_name is required"))
	}
	count, err := s.engine.CountCallers(ctx, qn)
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"count": count, "qualified_name": qn})
}

func (s *Server) handleCountCallees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	qn := stringArg(args, "qualified_name", "")
	if qn == "" {
		return toolError(fmt.Errorf("qualified_name is required"))
	}
	count, err := s.engine.CountCallees(ctx, qn)
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"count": count, "qualified_name": qn})
}

func (s *Server) handleGenerateClassDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	className := stringArg(args, "class_name", "")
	if className == "" {
		return toolError(fmt.Errorf("class_name is required"))
	}
	out, err := s.diagram.ClassDiagram(ctx, className)
	if err != nil {
		return toolError(err)
	}
	if out == "" {
		return toolResult(map[string]any{"error": "class not found"})
	}
	return toolResult(map[string]any{"mermaid": out})
}

func (s *Server) handleGenerateCallGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	qn := stringArg(args, "qualified_name", "")
	if qn == "" {
		return toolError(fmt.Errorf("qualified_name is required"))
	}
	out, err := s.diagram.CallGraph(ctx, qn, intArg(args, "depth", 2), stringArg(args, "direction", "callees"))
	if err != nil {
		return toolError(err)
	}
	if out == "" {
		return toolResult(map[string]any{"error": "symbol not found or no edges"})
	}
	return toolResult(map[string]any{"mermaid": out})
}

func (s *Server) handleGenerateImportGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	out, err := s.diagram.ImportGraph(ctx, stringArg(args, "file_path", ""))
	if err != nil {
		return toolError(err)
	}
	if out == "" {
		return toolResult(map[string]any{"error": "no import edges found"})
	}
	return toolResult(map[string]any{"mermaid": out})
}
