package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/dshills/codelibrarian/internal/config"
)

// Client talks to a single OpenAI-compatible embeddings endpoint,
// the shape both OpenAI itself and local servers like Ollama and
// llama.cpp's server expose at POST {api_url} with a
// {"input": [...], "model": "..."} body. One endpoint replaces the
// Jina/OpenAI/local three-way split: the config's api_url picks the
// backend, not a provider name.
type Client struct {
	apiURL     string
	model      string
	dimension  int
	batchSize  int
	maxChars   int
	httpClient *http.Client
	cache      *Cache
}

// NewClient builds a Client from the project's embeddings config.
func NewClient(cfg config.EmbeddingsConfig, cache *Cache) *Client {
	return &Client{
		apiURL:    cfg.APIURL,
		model:     cfg.Model,
		dimension: cfg.Dimensions,
		batchSize: cfg.BatchSize,
		maxChars:  cfg.MaxChars,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}
}

func (c *Client) Dimension() int { return c.dimension }
func (c *Client) Model() string  { return c.model }

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// EmbedOne embeds a single text, consulting the cache first.
func (c *Client) EmbedOne(ctx context.Context, text string) (*Embedding, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	embeddings, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}
	return embeddings[0], nil
}

// EmbedTexts embeds many texts, splitting into batches of at most
// c.batchSize and truncating each text to c.maxChars, the way
// embed_texts chunked its outer loop over embed_batch.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([]*Embedding, error) {
	if err := ValidateBatchRequest(BatchEmbeddingRequest{Texts: texts}); err != nil {
		return nil, err
	}

	results := make([]*Embedding, len(texts))
	pending := make([]string, 0, len(texts))
	pendingIdx := make([]int, 0, len(texts))

	for i, text := range texts {
		truncated := truncate(text, c.maxChars)
		hash := ComputeHash(truncated)
		if c.cache != nil {
			if emb, ok := c.cache.Get(hash); ok {
				results[i] = emb
				continue
			}
		}
		pending = append(pending, truncated)
		pendingIdx = append(pendingIdx, i)
	}

	for start := 0; start < len(pending); start += c.batchSize {
		end := start + c.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		embeddings, err := c.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: requested %d embeddings, got %d", ErrProviderFailed, len(batch), len(embeddings))
		}

		for j, emb := range embeddings {
			idx := pendingIdx[start+j]
			hash := ComputeHash(batch[j])
			emb.Hash = hash
			emb.Model = c.model
			results[idx] = emb
			if c.cache != nil {
				c.cache.Set(hash, emb)
			}
		}
	}

	return results, nil
}

// embedBatch performs one HTTP round trip, retrying with exponential
// backoff on transport or non-2xx failures.
func (c *Client) embedBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	config := DefaultRetryConfig()
	embeddings, err := retryWithBackoff(ctx, config, func() ([]*Embedding, error) {
		return c.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrProviderFailed, MaxRetries, err)
	}
	return embeddings, nil
}

func (c *Client) callAPI(ctx context.Context, texts []string) ([]*Embedding, error) {
	reqBody := map[string]any{
		"input": texts,
		"model": c.model,
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
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	embeddings := make([]*Embedding, len(apiResp.Data))
	for i, data := range apiResp.Data {
		idx := i
		if data.Index >= 0 && data.Index < len(embeddings) {
			idx = data.Index
		}
		embeddings[idx] = &Embedding{
			Vector:    data.Embedding,
			Dimension: len(data.Embedding),
			Provider:  c.apiURL,
			Model:     apiResp.Model,
		}
	}
	return embeddings, nil
}

// CheckConnection embeds a one-word probe and confirms the endpoint
// returns vectors of the configured dimension, catching a
// model/config mismatch before an indexing run burns time on it.
func (c *Client) CheckConnection(ctx context.Context) error {
	emb, err := c.EmbedOne(ctx, "connection check")
	if err != nil {
		return fmt.Errorf("embeddings endpoint unreachable: %w", err)
	}
	if c.dimension > 0 && emb.Dimension != c.dimension {
		return fmt.Errorf("%w: configured dimension %d, endpoint returned %d", ErrUnsupportedModel, c.dimension, emb.Dimension)
	}
	return nil
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return text[:maxChars]
}

// NormalizeVector scales v to unit length, used when a store's
// vector search wants cosine similarity from a plain dot product.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
