package contract

import (
	"context"

	"paper-brain-be/internal/entity"
)

type PaperEmbeddingRepository interface {
	FindByArxivId(ctx context.Context, arxivId string) (*entity.PaperEmbedding, error)
	Upsert(ctx context.Context, embedding *entity.PaperEmbedding) error
}
