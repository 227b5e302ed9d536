package types

// MatchType classifies how a search result was found.
type MatchType string

const (
	MatchFulltext MatchType = "fulltext"
	MatchSemantic MatchType = "semantic"
	MatchHybrid   MatchType = "hybrid"
	MatchGraph    MatchType = "graph"
)

// SearchResult pairs a hydrated symbol with its ranking score and the
// path that produced it.
type SearchResult struct {
	Symbol    *SymbolRecord `json:"symbol"`
	Score     float64       `json:"score"`
	MatchType MatchType     `json:"match_type"`
}

// ToMap renders the result as an MCP/JSON-facing map, matching the
// original reference implementation's SearchResult.to_dict() shape:
// the symbol's fields flattened with score and match_type appended.
func (r *SearchResult) ToMap() map[string]any {
	m := r.Symbol.ToMap()
	m["score"] = r.Score
	m["match_type"] = string(r.MatchType)
	return m
}
