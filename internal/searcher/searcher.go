package searcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/rewriter"
	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

const ftsScale = 10.0

// Request is one call into Engine.Search.
type Request struct {
	Query        string
	Limit        int
	SemanticOnly bool
	TextOnly     bool
	// ForceRewrite consults the rewriter regardless of the heuristic
	// in shouldTriggerRewrite, matching the MCP search_code tool's
	// explicit "rewrite" argument.
	ForceRewrite bool
}

// Engine answers every read-side query over an index: hybrid search,
// symbol lookup, and graph navigation. Embed and Rewrite may both be
// nil; nil Embed disables the vector half of hybrid search, nil
// Rewrite disables the query-rewrite hook entirely.
type Engine struct {
	store           *storage.Store
	embed           *embedder.Client
	rewrite         *rewriter.Client
	focusMultiplier float64
	cache           *queryCache
}

// New builds a search Engine. focusMultiplier is the score penalty
// applied to off-focus results when a rewrite call returns one
// (0 disables focus adjustment entirely; spec default is 0.5).
func New(store *storage.Store, embed *embedder.Client, rewrite *rewriter.Client, focusMultiplier float64) *Engine {
	return &Engine{store: store, embed: embed, rewrite: rewrite, focusMultiplier: focusMultiplier, cache: newQueryCache()}
}

// InvalidateCache drops every cached search response. Call this after
// any index pass that writes new symbols or edges, since a query
// cached before the write could otherwise return stale results for
// up to queryCacheTTL.
func (e *Engine) InvalidateCache() {
	e.cache.invalidate()
}

// Search runs the full pipeline: graph-intent routing first, then the
// hybrid FTS+vector path, then the query-rewrite hook (forced,
// heuristic-triggered, or zero-result fallback, in that priority).
func (e *Engine) Search(ctx context.Context, req Request) ([]types.SearchResult, error) {
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}

	if cached, ok := e.cache.get(req); ok {
		return cached, nil
	}

	results, err := e.search(ctx, req)
	if err != nil {
		return nil, err
	}
	e.cache.set(req, results)
	return results, nil
}

func (e *Engine) search(ctx context.Context, req Request) ([]types.SearchResult, error) {
	if intent, target := classifyIntent(req.Query); intent != graphNone {
		return e.graphSearch(ctx, intent, target)
	}

	results, err := e.hybridSearch(ctx, req.Query, req.Limit, req.SemanticOnly, req.TextOnly)
	if err != nil {
		return nil, err
	}

	if e.rewrite == nil {
		return results, nil
	}

	if req.ForceRewrite || shouldTriggerRewrite(req.Query) {
		return e.applyRewrite(ctx, req, results)
	}
	if len(results) == 0 {
		return e.applyRewrite(ctx, req, results)
	}
	return results, nil
}

// hybridSearch runs FTS and vector search concurrently and fuses them
// by mean score per symbol, the way spec.md's hybrid path defines it:
// no reciprocal-rank fusion, just the mean of whichever scores a
// symbol earned.
func (e *Engine) hybridSearch(ctx context.Context, query string, limit int, semanticOnly, textOnly bool) ([]types.SearchResult, error) {
	type ftsOutcome struct {
		hits []storage.FTSMatch
		err  error
	}
	type vecOutcome struct {
		hits []storage.VectorMatch
		err  error
	}

	ftsCh := make(chan ftsOutcome, 1)
	vecCh := make(chan vecOutcome, 1)

	if !semanticOnly {
		go func() {
			hits, err := e.store.FTSSearch(ctx, query, limit*2)
			ftsCh <- ftsOutcome{hits, err}
		}()
	} else {
		ftsCh <- ftsOutcome{}
	}

	if !textOnly && e.embed != nil {
		go func() {
			emb, err := e.embed.EmbedOne(ctx, query)
			if err != nil {
				vecCh <- vecOutcome{err: fmt.Errorf("embed query: %w", err)}
				return
			}
			hits, err := e.store.VectorSearch(ctx, emb.Vector, limit*2)
			vecCh <- vecOutcome{hits, err}
		}()
	} else {
		vecCh <- vecOutcome{}
	}

	fts := <-ftsCh
	vec := <-vecCh

	if fts.err != nil && vec.err != nil {
		return nil, fmt.Errorf("both search paths failed: fts=%v vector=%v", fts.err, vec.err)
	}

	// bm25() returns a more-negative score for a better match; negate
	// before scaling into [0,1].
	ftsScores := make(map[int64]float64, len(fts.hits))
	for _, hit := range fts.hits {
		ftsScores[hit.SymbolID] = clamp01(-hit.BM25 / ftsScale)
	}
	vecScores := make(map[int64]float64, len(vec.hits))
	for _, hit := range vec.hits {
		vecScores[hit.SymbolID] = clamp01(1 - hit.Distance/2)
	}

	type scored struct {
		id        int64
		score     float64
		matchType types.MatchType
	}
	seen := make(map[int64]bool, len(ftsScores)+len(vecScores))
	for id := range ftsScores {
		seen[id] = true
	}
	for id := range vecScores {
		seen[id] = true
	}

	combined := make([]scored, 0, len(seen))
	for id := range seen {
		f, hasF := ftsScores[id]
		v, hasV := vecScores[id]
		var sum float64
		var n int
		if hasF {
			sum += f
			n++
		}
		if hasV {
			sum += v
			n++
		}
		if n == 0 {
			continue
		}
		matchType := types.MatchFulltext
		switch {
		case hasF && hasV:
			matchType = types.MatchHybrid
		case hasV:
			matchType = types.MatchSemantic
		}
		combined = append(combined, scored{id: id, score: sum / float64(n), matchType: matchType})
	}

	sort.Slice(combined, func(i, j int) bool { return combined[i].score > combined[j].score })
	if len(combined) > limit {
		combined = combined[:limit]
	}

	results := make([]types.SearchResult, 0, len(combined))
	for _, c := range combined {
		sym, err := e.store.GetSymbolByID(ctx, c.id)
		if err != nil {
			continue
		}
		results = append(results, types.SearchResult{Symbol: sym, Score: c.score, MatchType: c.matchType})
	}
	return results, nil
}

// applyRewrite consults the rewriter and, on success, reruns hybrid
// search with its OR-joined terms, merges the two result sets keeping
// the max score per symbol, and applies the focus multiplier. Any
// rewriter failure leaves the original results untouched.
func (e *Engine) applyRewrite(ctx context.Context, req Request, original []types.SearchResult) ([]types.SearchResult, error) {
	rewritten, err := e.rewrite.Rewrite(ctx, req.Query, nil)
	if err != nil {
		return original, nil
	}
	if rewritten == nil || len(rewritten.Terms) == 0 {
		return original, nil
	}

	orQuery := strings.Join(rewritten.Terms, " OR ")
	extra, err := e.hybridSearch(ctx, orQuery, req.Limit, req.SemanticOnly, req.TextOnly)
	if err != nil {
		return original, nil
	}

	merged := make(map[int64]types.SearchResult, len(original)+len(extra))
	order := make([]int64, 0, len(original)+len(extra))
	for _, r := range original {
		merged[r.Symbol.ID] = r
		order = append(order, r.Symbol.ID)
	}
	for _, r := range extra {
		existing, ok := merged[r.Symbol.ID]
		if !ok {
			order = append(order, r.Symbol.ID)
			merged[r.Symbol.ID] = r
			continue
		}
		if r.Score > existing.Score {
			merged[r.Symbol.ID] = r
		}
	}

	final := make([]types.SearchResult, 0, len(order))
	for _, id := range order {
		final = append(final, merged[id])
	}
	applyFocus(final, rewritten.Focus, e.focusMultiplier)

	sort.Slice(final, func(i, j int) bool { return final[i].Score > final[j].Score })
	if len(final) > req.Limit {
		final = final[:req.Limit]
	}
	return final, nil
}

// applyFocus penalizes off-focus results in place: implementation
// focus multiplies test-file scores by multiplier, tests focus
// multiplies everything else, "all" leaves scores untouched.
func applyFocus(results []types.SearchResult, focus rewriter.Focus, multiplier float64) {
	if multiplier <= 0 || multiplier >= 1 || focus == rewriter.FocusAll || focus == "" {
		return
	}
	for i := range results {
		isTest := isTestFile(results[i].Symbol.RelativePath)
		switch focus {
		case rewriter.FocusImplementation:
			if isTest {
				results[i].Score *= multiplier
			}
		case rewriter.FocusTests:
			if !isTest {
				results[i].Score *= multiplier
			}
		}
	}
}

func isTestFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, "_test.go") ||
		strings.Contains(lower, "/test_") ||
		strings.HasPrefix(lower, "test_") ||
		strings.Contains(lower, ".test.") ||
		strings.Contains(lower, "/tests/") ||
		strings.Contains(lower, "_spec.")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// graphSearch dispatches a classified intent to the corresponding
// graph query, resolving the target name to a symbol first.
func (e *Engine) graphSearch(ctx context.Context, intent graphIntent, target string) ([]types.SearchResult, error) {
	matches, err := e.store.LookupSymbol(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	root := matches[0]

	var records []*types.SymbolRecord
	switch intent {
	case graphCallers:
		records, err = e.store.GetCallers(ctx, root.ID, 1)
	case graphCallees:
		records, err = e.store.GetCallees(ctx, root.ID, 1)
	case graphHierarchy:
		var hierarchy *storage.ClassHierarchy
		hierarchy, err = e.store.GetClassHierarchy(ctx, root.ID)
		if hierarchy != nil {
			records = append(records, hierarchy.Ancestors...)
			records = append(records, hierarchy.Descendants...)
		}
	}
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, len(records))
	for i, r := range records {
		results[i] = types.SearchResult{Symbol: r, Score: 1.0, MatchType: types.MatchGraph}
	}
	return results, nil
}

// LookupSymbol resolves a name exactly, then falls back to a prefix
// match, as storage.Store.LookupSymbol implements internally.
func (e *Engine) LookupSymbol(ctx context.Context, name string) ([]*types.SymbolRecord, error) {
	return e.store.LookupSymbol(ctx, name)
}

// ListSymbols delegates to the store with the given filter.
func (e *Engine) ListSymbols(ctx context.Context, filter storage.ListSymbolFilter) ([]*types.SymbolRecord, error) {
	return e.store.ListSymbols(ctx, filter)
}

// GetCallers returns symbols that call the named symbol, up to depth hops.
func (e *Engine) GetCallers(ctx context.Context, qualifiedName string, depth int) ([]*types.SymbolRecord, error) {
	sym, err := e.resolveOne(ctx, qualifiedName)
	if err != nil || sym == nil {
		return nil, err
	}
	return e.store.GetCallers(ctx, sym.ID, depth)
}

// GetCallees returns symbols the named symbol calls, up to depth hops.
func (e *Engine) GetCallees(ctx context.Context, qualifiedName string, depth int) ([]*types.SymbolRecord, error) {
	sym, err := e.resolveOne(ctx, qualifiedName)
	if err != nil || sym == nil {
		return nil, err
	}
	return e.store.GetCallees(ctx, sym.ID, depth)
}

// CountCallers reports the direct (depth-1) caller count.
func (e *Engine) CountCallers(ctx context.Context, qualifiedName string) (int, error) {
	sym, err := e.resolveOne(ctx, qualifiedName)
	if err != nil || sym == nil {
		return 0, err
	}
	return e.store.CountCallers(ctx, sym.ID)
}

// CountCallees reports the direct (depth-1) callee count.
func (e *Engine) CountCallees(ctx context.Context, qualifiedName string) (int, error) {
	sym, err := e.resolveOne(ctx, qualifiedName)
	if err != nil || sym == nil {
		return 0, err
	}
	return e.store.CountCallees(ctx, sym.ID)
}

// GetClassHierarchy returns the ancestor/descendant symbols for a
// class-like symbol.
func (e *Engine) GetClassHierarchy(ctx context.Context, className string) (*storage.ClassHierarchy, error) {
	sym, err := e.resolveOne(ctx, className)
	if err != nil || sym == nil {
		return nil, err
	}
	return e.store.GetClassHierarchy(ctx, sym.ID)
}

// GetFileImports returns a file's recorded import edges.
func (e *Engine) GetFileImports(ctx context.Context, relPath string) ([]storage.ImportRow, error) {
	file, err := e.store.GetFileByPath(ctx, relPath)
	if err != nil {
		return nil, err
	}
	return e.store.GetFileImports(ctx, file.ID)
}

func (e *Engine) resolveOne(ctx context.Context, name string) (*types.SymbolRecord, error) {
	matches, err := e.store.LookupSymbol(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
