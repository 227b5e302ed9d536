// Package parser extracts symbols and graph edges from source files.
//
// Go source is parsed natively with go/ast for precise signatures,
// receiver resolution, and struct-embedding inheritance. Every other
// supported language is parsed with tree-sitter, using the per-language
// node-type maps registered in internal/langspec to find functions,
// classes, calls, and imports without a language-specific type system.
//
// Both paths produce the same contract: a types.ParseResult holding the
// file's symbols and the import/call/inherit edges it implies. Neither
// path returns an error for a syntax error in the source file itself;
// diagnostics are recorded on the result so a codebase with a handful
// of broken files still yields symbols for everything else.
//
//	e := parser.New()
//	result, err := e.ParseFile("/repo/internal/foo.go", "internal/foo.go", langspec.Go)
package parser
