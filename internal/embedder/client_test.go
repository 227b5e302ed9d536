package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/config"
)

func fakeEmbeddingsServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dimension)
			vec[0] = float32(i + 1)
			data[i] = map[string]any{"embedding": vec, "index": i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "model": req.Model})
	}))
}

func testConfig(url string) config.EmbeddingsConfig {
	return config.EmbeddingsConfig{
		APIURL:     url,
		Model:      "test-model",
		Dimensions: 4,
		BatchSize:  2,
		MaxChars:   2000,
		Enabled:    true,
	}
}

func TestClientEmbedOne(t *testing.T) {
	server := fakeEmbeddingsServer(t, 4)
	defer server.Close()

	client := NewClient(testConfig(server.URL), NewCache(10))
	emb, err := client.EmbedOne(context.Background(), "func Foo() {}")
	require.NoError(t, err)
	assert.Equal(t, 4, emb.Dimension)
	assert.Equal(t, "test-model", emb.Model)
}

func TestClientEmbedTextsUsesCache(t *testing.T) {
	server := fakeEmbeddingsServer(t, 4)
	defer server.Close()

	cache := NewCache(10)
	client := NewClient(testConfig(server.URL), cache)

	first, err := client.EmbedTexts(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 2, cache.Size())

	second, err := client.EmbedTexts(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Vector, second[0].Vector)
}

func TestClientEmbedTextsBatchesRequests(t *testing.T) {
	var callCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float32{1, 2, 3, 4}, "index": i}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "model": "test-model"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	texts := []string{"a", "b", "c", "d", "e"}
	embeddings, err := client.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, embeddings, 5)
	assert.Equal(t, 3, callCount) // batch size 2 over 5 texts
}

func TestClientEmbedTextsReordersByResponseIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Respond with entries reversed relative to the request, each
		// tagged with its true index, the way a batching backend might.
		// The vector encodes the input text ("a" -> 0, "b" -> 1, ...), so
		// the expected value holds across batch boundaries.
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			src := len(req.Input) - 1 - i
			data[i] = map[string]any{"embedding": []float32{float32(req.Input[src][0] - 'a'), 0, 0, 0}, "index": src}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "model": "test-model"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	embeddings, err := client.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	for i, emb := range embeddings {
		assert.Equal(t, float32(i), emb.Vector[0])
	}
}

func TestCheckConnectionDetectsDimensionMismatch(t *testing.T) {
	server := fakeEmbeddingsServer(t, 8)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Dimensions = 4
	client := NewClient(cfg, nil)

	err := client.CheckConnection(context.Background())
	require.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestValidateBatchRequestRejectsEmpty(t *testing.T) {
	err := ValidateBatchRequest(BatchEmbeddingRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
