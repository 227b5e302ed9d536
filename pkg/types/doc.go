// Package types provides shared type definitions for codelibrarian.
//
// These are the data-transfer contracts shared by the parser, storage,
// indexer, searcher, and MCP packages: Symbol and its Parameter list,
// the three graph edge kinds (Import, Call, Inherit), and ParseResult,
// the output every language extractor produces.
package types
