package rewriter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status != http.StatusOK {
			return
		}
		payload := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestRewriteParsesJSON(t *testing.T) {
	server := chatServer(t, `{"terms": ["Store", "InsertSymbol"], "focus": "implementation"}`, http.StatusOK)
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second)
	result, err := client.Rewrite(context.Background(), "how does symbol insertion work", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"Store", "InsertSymbol"}, result.Terms)
	assert.Equal(t, FocusImplementation, result.Focus)
}

func TestRewriteStripsMarkdownFence(t *testing.T) {
	server := chatServer(t, "```json\n{\"terms\": [\"Foo\"], \"focus\": \"tests\"}\n```", http.StatusOK)
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second)
	result, err := client.Rewrite(context.Background(), "test foo", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, FocusTests, result.Focus)
}

func TestRewriteInvalidFocusFallsBackToAll(t *testing.T) {
	server := chatServer(t, `{"terms": ["Foo"], "focus": "bogus"}`, http.StatusOK)
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second)
	result, err := client.Rewrite(context.Background(), "foo", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, FocusAll, result.Focus)
}

func TestRewriteReturnsNilOnBadJSON(t *testing.T) {
	server := chatServer(t, "not json at all", http.StatusOK)
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second)
	result, err := client.Rewrite(context.Background(), "foo", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRewriteReturnsNilOnServerError(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second)
	result, err := client.Rewrite(context.Background(), "foo", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}
