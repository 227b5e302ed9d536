// Package indexer runs the discovery -> parse -> store -> resolve ->
// embed pipeline that builds and maintains one project's code index.
//
// # Pipeline
//
//  1. Discovery: walk the project root, skip excluded globs, detect
//     each file's language.
//  2. Parse: CPU-bound, so files are parsed concurrently across a
//     worker pool sized to runtime.NumCPU().
//  3. Store: each file's symbols and edges commit in their own
//     transaction, serialized through a single writer goroutine, since
//     the database connection pool is pinned to one connection.
//  4. Resolve: after every file in the run has committed, a single
//     ResolveGraphEdges pass turns call/inherit/import names into ids.
//  5. Embed: symbols without a vector are embedded in batches against
//     the configured endpoint.
//
// # Modes
//
// ModeIncremental skips files whose content hash matches the last
// run. ModeFull reparses everything. ModeReembed skips discovery and
// parsing, clears every stored embedding, and re-embeds all symbols
// without re-walking the tree.
//
// # Concurrency
//
// IndexLock enforces that only one Run executes at a time per
// Indexer; a concurrent call fails fast with ErrAlreadyRunning
// instead of queuing, since a second full run of the same project has
// nothing to do while the first is writing.
package indexer
