package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/diagram"
	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/indexer"
	"github.com/dshills/codelibrarian/internal/rewriter"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
)

const (
	// ServerName is the MCP server name advertised at initialize.
	ServerName = "codelibrarian"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the mcp-go stdio server with the storage, indexing,
// search, and diagram dependencies its tools dispatch to.
type Server struct {
	mcp     *server.MCPServer
	store   *storage.Store
	idx     *indexer.Indexer
	engine  *searcher.Engine
	diagram *diagram.Generator
	cfg     *config.Config
	log     *slog.Logger
}

// NewServer opens the project's index and wires every dependency a
// tool handler needs. The embedder and rewriter are both optional:
// nil when their respective config sections are disabled, in which
// case the tools that need them degrade gracefully (vector search is
// skipped, query rewriting never triggers).
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var embed *embedder.Client
	if cfg.Embeddings.Enabled {
		embed = embedder.NewClient(cfg.Embeddings, embedder.NewCache(0))
	}

	var rewrite *rewriter.Client
	if cfg.QueryRewrite.Enabled {
		rewrite = rewriter.NewClient(cfg.QueryRewrite.APIURL, cfg.QueryRewrite.Model, 0)
	}

	idx := indexer.New(store, embed, cfg)
	engine := searcher.New(store, embed, rewrite, cfg.QueryRewrite.FocusMultiplier)
	gen := diagram.New(store)

	mcpServer := server.NewMCPServer(ServerName, ServerVersion)

	s := &Server{
		mcp:     mcpServer,
		store:   store,
		idx:     idx,
		engine:  engine,
		diagram: gen,
		cfg:     cfg,
		log:     log,
	}
	s.registerTools()

	return s, nil
}

// Serve blocks on the stdio transport until it returns, then closes the
// store. ctx is not passed to the transport, so canceling it does not
// stop Serve.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.log.Error("close store", "error", err)
		}
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools binds every tool schema to its handler.
func (s *Server) registerTools() {
	s.mcp.AddTool(indexCodebaseTool(), s.handleIndexCodebase)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(lookupSymbolTool(), s.handleLookupSymbol)
	s.mcp.AddTool(getCallersTool(), s.handleGetCallers)
	s.mcp.AddTool(getCalleesTool(), s.handleGetCallees)
	s.mcp.AddTool(getFileImportsTool(), s.handleGetFileImports)
	s.mcp.AddTool(listSymbolsTool(), s.handleListSymbols)
	s.mcp.AddTool(getClassHierarchyTool(), s.handleGetClassHierarchy)
	s.mcp.AddTool(countCallersTool(), s.handleCountCallers)
	s.mcp.AddTool(countCalleesTool(), s.handleCountCallees)
	s.mcp.AddTool(generateClassDiagramTool(), s.handleGenerateClassDiagram)
	s.mcp.AddTool(generateCallGraphTool(), s.handleGenerateCallGraph)
	s.mcp.AddTool(generateImportGraphTool(), s.handleGenerateImportGraph)
}
