package searcher

import (
	"regexp"
	"strings"
)

// graphIntent names the graph query a natural-language phrase routes
// to; graphNone means the query should take the hybrid path instead.
type graphIntent int

const (
	graphNone graphIntent = iota
	graphCallers
	graphCallees
	graphHierarchy
)

// graphIntentPattern pairs a phrase matcher with the query it routes
// to and the regexp group holding the target symbol name.
type graphIntentPattern struct {
	intent  graphIntent
	pattern *regexp.Regexp
}

var graphIntentPatterns = []graphIntentPattern{
	{graphCallers, regexp.MustCompile(`(?i)^who\s+calls\s+(.+)$`)},
	{graphCallers, regexp.MustCompile(`(?i)^callers?\s+of\s+(.+)$`)},
	{graphCallees, regexp.MustCompile(`(?i)^who\s+does\s+(.+?)\s+call$`)},
	{graphCallees, regexp.MustCompile(`(?i)^callees?\s+of\s+(.+)$`)},
	{graphCallees, regexp.MustCompile(`(?i)^what\s+does\s+(.+?)\s+call$`)},
	{graphHierarchy, regexp.MustCompile(`(?i)^hierarchy\s+of\s+(.+)$`)},
	{graphHierarchy, regexp.MustCompile(`(?i)^class\s+hierarchy\s+(?:of|for)\s+(.+)$`)},
	{graphHierarchy, regexp.MustCompile(`(?i)^(?:sub|super)classes?\s+of\s+(.+)$`)},
}

// classifyIntent inspects a raw query for a graph-navigation phrase.
// On a match it returns the target symbol name with surrounding
// punctuation trimmed; graphNone means the hybrid path should run
// instead.
func classifyIntent(query string) (graphIntent, string) {
	trimmed := strings.TrimSpace(query)
	for _, p := range graphIntentPatterns {
		if m := p.pattern.FindStringSubmatch(trimmed); m != nil {
			target := strings.Trim(strings.TrimSpace(m[1]), "?.!\"'")
			if target != "" {
				return p.intent, target
			}
		}
	}
	return graphNone, ""
}
