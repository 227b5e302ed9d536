// Package storage provides SQLite-based persistence for one project's
// code index: files, symbols, and the import/call/inherit edges
// between them, plus full-text and vector search over symbols.
//
// # Database Schema
//
// Tables:
//   - files: tracked source files, keyed by path relative to the
//     project root, with a content hash for change detection
//   - symbols: functions, methods, classes, and modules, linked to
//     their enclosing symbol via parent_id
//   - symbols_fts: FTS5 index over symbol name/signature/documentation
//   - imports, calls, inherits: edges recorded unresolved during
//     parsing and resolved in a single pass after a file batch commits
//   - embeddings: one row per embedded symbol's vector, written in every
//     build and read by the Go-fallback scan; a sqlite_vec build also
//     mirrors each vector into the symbol_vectors vec0 table, which its
//     native search reads
//
// # Single-Writer Discipline
//
// The database connection pool is pinned to one connection. Callers
// coordinate writes at the indexer level; Store itself does not lock.
//
// # Edge Resolution
//
// Calls and inherits are inserted with a name, not an id, since the
// target symbol may not exist yet when its caller is parsed. A single
// call to ResolveGraphEdges after a batch of files commits turns
// every resolvable name into an id, first by exact match, then by a
// dotted-suffix match for calls like "obj.Method".
//
// # Build Tags
//
// Two build configurations select the SQLite driver and vector search
// strategy:
//
//	CGO_ENABLED=1 go build -tags sqlite_vec   # mattn/go-sqlite3 + native sqlite-vec
//	CGO_ENABLED=0 go build -tags purego       # modernc.org/sqlite + Go cosine scan
package storage
