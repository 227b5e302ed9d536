package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index (or re-index) the configured project root, making it searchable.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Indexing mode: incremental (skip unchanged files), full (reparse everything), or reembed (clear all embeddings and re-embed every symbol)",
					"enum":        []string{"incremental", "full", "reembed"},
					"default":     "incremental",
				},
			},
		},
	}
}

func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index size and health: file, symbol, and embedding counts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_code",
		Description: "Hybrid semantic + full-text search across all indexed code symbols. " +
			"Returns functions, methods, and classes matching the query with file path and line number.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or keyword search query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"default":     10,
					"description": "Maximum number of results to return",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"hybrid", "semantic", "fulltext"},
					"default":     "hybrid",
					"description": "Search mode",
				},
				"rewrite": map[string]interface{}{
					"type":        "boolean",
					"default":     false,
					"description": "Force LLM-based query rewriting for better natural language understanding",
				},
			},
			Required: []string{"query"},
		},
	}
}

func lookupSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name: "lookup_symbol",
		Description: "Look up a code symbol by exact name or qualified name. " +
			"Returns full signature, docstring, parameters, return type, file path and line number.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name (e.g. 'ParseConfig' or 'Runner.Run')",
				},
			},
			Required: []string{"name"},
		},
	}
}

func getCallersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_callers",
		Description: "Find all functions/methods that call the specified symbol.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"qualified_name": map[string]interface{}{
					"type":        "string",
					"description": "Qualified name of the symbol",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"default":     1,
					"description": "How many call-graph hops to traverse",
				},
			},
			Required: []string{"qualified_name"},
		},
	}
}

func getCalleesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_callees",
		Description: "Find all functions/methods called by the specified symbol.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"qualified_name": map[string]interface{}{
					"type":        "string",
					"description": "Qualified name of the symbol",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"default":     1,
					"description": "How many call-graph hops to traverse",
				},
			},
			Required: []string{"qualified_name"},
		},
	}
}

func getFileImportsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_file_imports",
		Description: "Show what modules a file imports.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the file, relative to the project root",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

func listSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name: "list_symbols",
		Description: "List symbols filtered by kind or file. " +
			"Useful for structural queries like 'all functions in this file'.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"function", "method", "class", "module"},
					"description": "Filter by symbol kind",
				},
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Filter to symbols in this file",
				},
			},
		},
	}
}

func getClassHierarchyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_class_hierarchy",
		Description: "Get the inheritance hierarchy for a class: its parent classes and all known subclasses.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"class_name": map[string]interface{}{
					"type":        "string",
					"description": "Class name or qualified class name",
				},
			},
			Required: []string{"class_name"},
		},
	}
}

func countCallersTool() mcp.Tool {
	return mcp.Tool{
		Name: "count_callers",
		Description: "Return the number of direct callers of a symbol. " +
			"Efficient alternative to get_callers when only the count is needed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"qualified_name": map[string]interface{}{
					"type":        "string",
					"description": "Qualified name of the symbol",
				},
			},
			Required: []string{"qualified_name"},
		},
	}
}

func countCalleesTool() mcp.Tool {
	return mcp.Tool{
		Name: "count_callees",
		Description: "Return the number of direct callees of a symbol. " +
			"Efficient alternative to get_callees when only the count is needed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"qualified_name": map[string]interface{}{
					"type":        "string",
					"description": "Qualified name of the symbol",
				},
			},
			Required: []string{"qualified_name"},
		},
	}
}

func generateClassDiagramTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_class_diagram",
		Description: "Generate a Mermaid class hierarchy diagram for a given class, showing parents, children, and methods.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"class_name": map[string]interface{}{
					"type":        "string",
					"description": "Class name or qualified class name",
				},
			},
			Required: []string{"class_name"},
		},
	}
}

func generateCallGraphTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_call_graph",
		Description: "Generate a Mermaid call graph diagram rooted at a function/method, showing caller or callee relationships.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"qualified_name": map[string]interface{}{
					"type":        "string",
					"description": "Qualified name of the root symbol",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"default":     2,
					"description": "Number of hops to traverse",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"callees", "callers"},
					"default":     "callees",
					"description": "Traverse forward (callees) or backward (callers)",
				},
			},
			Required: []string{"qualified_name"},
		},
	}
}

func generateImportGraphTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_import_graph",
		Description: "Generate a Mermaid diagram of file-to-file import dependencies, optionally scoped to a single file.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Optional file path to scope the graph to",
				},
			},
		},
	}
}
