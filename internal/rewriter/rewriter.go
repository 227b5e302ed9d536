// Package rewriter turns a natural-language search query into a small
// set of code-search terms via an OpenAI-compatible chat completions
// endpoint, so the search engine can retry a query that returned
// nothing with vocabulary closer to what the index actually contains.
package rewriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Focus narrows a rewritten query toward implementation code, tests,
// or leaves it unconstrained.
type Focus string

const (
	FocusImplementation Focus = "implementation"
	FocusTests          Focus = "tests"
	FocusAll            Focus = "all"
)

// Rewritten is the parsed result of one rewrite call.
type Rewritten struct {
	Terms []string
	Focus Focus
}

const baseSystemPrompt = `You are a code search assistant. Given a natural language question about a codebase, return JSON with search terms a developer would use to find the relevant code.

%sReturn ONLY valid JSON:
{"terms": ["term1", "term2", ...], "focus": "implementation"|"tests"|"all"}

Rules:
- terms: 3-6 search terms, preferring actual symbol names from the codebase
- focus: "implementation" if asking about how code works, "tests" if asking about testing, "all" if unclear
- No explanations, just JSON`

var fenceOpen = regexp.MustCompile("^```(?:json)?\\s*\\n?")
var fenceClose = regexp.MustCompile("\\n?```\\s*$")

// Client calls a chat completions endpoint to rewrite a query.
// A failed or malformed response is not fatal to a caller: Rewrite
// returns (nil, nil) so the search engine falls back to the raw
// query instead of failing the whole request.
type Client struct {
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient builds a rewriter Client. A zero timeout defaults to 5s,
// matching how tight the caller's own request budget usually is.
func NewClient(apiURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Rewrite asks the configured model for search terms. vocabulary, if
// non-empty, is folded into the system prompt so the model prefers
// real symbol names from this codebase over generic English words.
func (c *Client) Rewrite(ctx context.Context, query string, vocabulary []string) (*Rewritten, error) {
	systemPrompt := buildSystemPrompt(vocabulary)

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": query},
		},
		"temperature": 0.0,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Default().Warn("query rewrite request failed", "error", err)
		return nil, nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		slog.Default().Warn("query rewrite endpoint returned non-200 status", "status", resp.StatusCode)
		return nil, nil
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		slog.Default().Warn("query rewrite response decode failed", "error", err)
		return nil, nil
	}
	if len(apiResp.Choices) == 0 {
		return nil, nil
	}

	return parseContent(apiResp.Choices[0].Message.Content), nil
}

func buildSystemPrompt(vocabulary []string) string {
	if len(vocabulary) == 0 {
		return fmt.Sprintf(baseSystemPrompt, "")
	}
	section := fmt.Sprintf("Available symbols in the codebase:\n%s\n\n", strings.Join(vocabulary, ", "))
	return fmt.Sprintf(baseSystemPrompt, section)
}

// parseContent strips a markdown code fence if present and decodes
// the {"terms": [...], "focus": "..."} payload. Any malformed shape
// returns nil rather than an error, matching Rewrite's fail-open
// contract.
func parseContent(content string) *Rewritten {
	cleaned := strings.TrimSpace(content)
	cleaned = fenceOpen.ReplaceAllString(cleaned, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")

	var parsed struct {
		Terms []string `json:"terms"`
		Focus string   `json:"focus"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		slog.Default().Warn("query rewrite returned invalid JSON", "content", content)
		return nil
	}
	if len(parsed.Terms) == 0 {
		return nil
	}

	focus := Focus(parsed.Focus)
	switch focus {
	case FocusImplementation, FocusTests, FocusAll:
	default:
		focus = FocusAll
	}

	return &Rewritten{Terms: parsed.Terms, Focus: focus}
}
