package searcher

import (
	"regexp"
	"strings"
)

var questionWords = map[string]bool{
	"how": true, "why": true, "what": true, "where": true, "when": true,
	"who": true, "which": true, "does": true, "is": true, "are": true,
	"can": true, "should": true,
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"to": true, "for": true, "and": true, "or": true, "is": true, "are": true,
	"do": true, "does": true, "i": true, "we": true, "it": true,
}

var identifierLike = regexp.MustCompile(`[a-z][A-Z]|_[a-zA-Z]|\.[a-zA-Z]|\(\)`)

// shouldTriggerRewrite implements the conservative heuristic spec.md
// describes for auto-triggering the query rewriter: it favors natural
// language questions over queries that already look like code search
// terms, so a query like "ParseFile qualifiedName" never gets rewritten
// away from the identifiers it already names.
func shouldTriggerRewrite(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	if identifierLike.MatchString(trimmed) {
		return false
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) == 0 {
		return false
	}

	hasQuestionWord := questionWords[words[0]]

	nonStop := 0
	for _, w := range words {
		if !stopWords[w] {
			nonStop++
		}
	}

	return hasQuestionWord && nonStop >= 3
}
