// Package mcp implements the Model Context Protocol stdio server for
// codelibrarian.
//
// The server exposes fourteen tools to AI coding assistants: two
// index-management tools (index_codebase, get_status), nine query tools
// (search_code, lookup_symbol, get_callers, get_callees,
// get_file_imports, list_symbols, get_class_hierarchy, count_callers,
// count_callees), and three diagram generators (generate_class_diagram,
// generate_call_graph, generate_import_graph).
//
// # Protocol overview
//
// MCP is JSON-RPC 2.0 over stdio:
//
//	Client → Server: {"method": "tools/call", "params": {"name": "search_code", "arguments": {...}}}
//	Server → Client: {"result": {"content": [{"type": "text", "text": "..."}]}}
//
// Every tool result is a JSON document encoded as a single text content
// block. Errors are reported as a JSON object with an "error" key rather
// than an MCP protocol error, so a client that can already parse tool
// output doesn't need a separate error path.
//
// # Basic usage
//
// The server is started via the serve subcommand, which blocks on stdin
// until the client disconnects:
//
//	codelibrarian mcp serve
//
// One Server is bound to a single project root, fixed by the config
// loaded at startup. There is no per-call path argument on
// index_codebase; re-pointing the index at a different tree means
// starting a new server against a different config.
//
// # Query tools
//
// search_code runs the hybrid full-text + semantic search described in
// package searcher, with an optional forced query rewrite. lookup_symbol,
// get_callers, get_callees, get_file_imports, list_symbols, and
// get_class_hierarchy are thin wrappers over the same searcher.Engine
// methods the CLI uses, so the two surfaces never drift. count_callers
// and count_callees return only {"count": n, "qualified_name": name} for
// callers that need the fan-in/fan-out size, not the full symbol list.
//
// # Diagram tools
//
// generate_class_diagram, generate_call_graph, and generate_import_graph
// wrap package diagram and return Mermaid source under a "mermaid" key,
// ready to drop into a fenced code block. They report an object with an
// "error" key rather than failing the call when the target symbol or file
// isn't found, since an empty diagram is a normal outcome for an
// assistant to reason about, not a protocol failure.
package mcp
