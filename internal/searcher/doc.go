// Package searcher answers every read-side query over a code index:
// hybrid full-text/semantic search, graph navigation (callers,
// callees, class hierarchy), and plain symbol/import lookups.
//
// # Basic Usage
//
//	eng := searcher.New(store, embed, rewrite, 0.5)
//
//	results, err := eng.Search(ctx, searcher.Request{
//	    Query: "how does the indexer resolve call edges",
//	    Limit: 10,
//	})
//
//	for _, r := range results {
//	    fmt.Printf("%s (%s, score %.2f)\n", r.Symbol.QualifiedName, r.MatchType, r.Score)
//	}
//
// # Intent routing
//
// Before running the hybrid path, Search checks the query against a
// small set of graph-navigation phrases: "callers of X", "who calls
// X", "callees of X", "hierarchy of X", and their variants. A match
// skips the hybrid path entirely and returns the graph query's
// results directly with MatchType graph and a fixed score of 1.0.
//
// # Hybrid search
//
// Otherwise Search runs full-text and vector search concurrently
// (vector search only if an embedder is configured and the caller
// hasn't asked for TextOnly), each capped at 2x the requested limit.
// A symbol's combined score is the mean of the scores it earned
// across whichever sources found it — not reciprocal rank fusion.
// Full-text scores come from SQLite's bm25(), negated and scaled by
// 1/10; vector scores are max(0, 1 - distance/2).
//
// # Query rewrite
//
// When a rewriter is configured, Search consults it either because
// the caller set ForceRewrite, because the query looks like a natural
// language question (see shouldTriggerRewrite), or as a last resort
// when the hybrid path returned nothing. A successful rewrite reruns
// hybrid search with the rewriter's terms OR-joined, merges the two
// result sets by keeping the higher score per symbol, and applies a
// focus multiplier that discounts off-focus results (implementation
// vs. tests). Any rewriter failure is swallowed and the original
// results are returned untouched.
package searcher
