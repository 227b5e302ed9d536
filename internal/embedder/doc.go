// Package embedder generates vector embeddings for symbols against a
// single OpenAI-compatible embeddings endpoint, configured by
// [config.EmbeddingsConfig] rather than selected from a fixed
// provider list.
//
// # Basic Usage
//
//	client := embedder.NewClient(cfg.Embeddings, embedder.NewCache(10000))
//	defer client.Close()
//
//	emb, err := client.EmbedOne(ctx, symbol.EmbeddingText())
//
// # Batching
//
// EmbedTexts consults the cache per text, then sends only the
// uncached remainder to the endpoint in batches of cfg.BatchSize,
// each text truncated to cfg.MaxChars first.
//
//	embeddings, err := client.EmbedTexts(ctx, texts)
//
// # Retry
//
// Every HTTP call goes through retryWithBackoff, an exponential
// backoff loop that stops immediately on context cancellation and
// gives up after MaxRetries attempts.
//
// # Connection Check
//
// CheckConnection embeds a short probe string and verifies the
// returned vector's dimension matches the configured one, catching a
// model/endpoint mismatch before an indexing run depends on it.
package embedder
