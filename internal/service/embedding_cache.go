package service

import (
	"context"
	"log"

	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/repository/contract"
	"paper-brain-be/pkg/rank"
)

// PgEmbeddingCache backs the ranking engine's embedding cache with the
// paper_embeddings table. Read failures degrade to a cache miss.
type PgEmbeddingCache struct {
	repo contract.PaperEmbeddingRepository
}

var _ rank.EmbeddingCache = (*PgEmbeddingCache)(nil)

func NewPgEmbeddingCache(repo contract.PaperEmbeddingRepository) *PgEmbeddingCache {
	return &PgEmbeddingCache{repo: repo}
}

func (c *PgEmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool) {
	cached, err := c.repo.FindByArxivId(ctx, key)
	if err != nil {
		log.Printf("[WARN] Embedding cache lookup failed for %s: %v", key, err)
		return nil, false
	}
	if cached == nil {
		return nil, false
	}
	return cached.Vector, true
}

func (c *PgEmbeddingCache) Put(ctx context.Context, key string, vector []float32) error {
	return c.repo.Upsert(ctx, &entity.PaperEmbedding{
		ArxivId: key,
		Vector:  vector,
	})
}
