package rank

import (
	"context"
	"fmt"
	"log"

	"paper-brain-be/pkg/embedding"
)

// EmbeddingCache is an optional persistent cache of document embeddings,
// keyed by an external document id (e.g. arXiv id). A nil cache disables
// caching; failures to write are non-fatal.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Put(ctx context.Context, key string, vector []float32) error
}

// Engine ranks candidate texts against a query in a shared embedding space.
type Engine struct {
	provider embedding.EmbeddingProvider
	cache    EmbeddingCache
	logger   *log.Logger
}

func NewEngine(provider embedding.EmbeddingProvider, cache EmbeddingCache, logger *log.Logger) *Engine {
	return &Engine{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// RankBySimilarity embeds the query and each candidate text, builds an
// ephemeral index, and returns the topK nearest candidates ordered by
// ascending distance. keys, when non-nil, must parallel texts and enables
// the embedding cache; pass nil to always embed.
func (e *Engine) RankBySimilarity(ctx context.Context, query string, texts []string, keys []string, topK int) ([]Match, error) {
	queryRes, err := e.provider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	idx := NewIndex()
	for i, text := range texts {
		vec, err := e.embedDocument(ctx, text, cacheKey(keys, i))
		if err != nil {
			return nil, fmt.Errorf("embed candidate %d: %w", i, err)
		}
		idx.Add(vec)
	}

	if topK > idx.Len() {
		topK = idx.Len()
	}

	return idx.Search(queryRes.Embedding.Values, topK), nil
}

func (e *Engine) embedDocument(ctx context.Context, text, key string) ([]float32, error) {
	if e.cache != nil && key != "" {
		if vec, ok := e.cache.Get(ctx, key); ok {
			return vec, nil
		}
	}

	res, err := e.provider.Generate(text, embedding.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	vec := res.Embedding.Values

	if e.cache != nil && key != "" {
		if err := e.cache.Put(ctx, key, vec); err != nil {
			e.logger.Printf("[WARN] Failed to cache embedding for %s: %v", key, err)
		}
	}

	return vec, nil
}

func cacheKey(keys []string, i int) string {
	if keys == nil || i >= len(keys) {
		return ""
	}
	return keys[i]
}
