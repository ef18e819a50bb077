package mapper

import (
	"github.com/pgvector/pgvector-go"

	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/model"
)

type PaperEmbeddingMapper struct{}

func NewPaperEmbeddingMapper() *PaperEmbeddingMapper {
	return &PaperEmbeddingMapper{}
}

func (m *PaperEmbeddingMapper) ToModel(e *entity.PaperEmbedding) *model.PaperEmbedding {
	if e == nil {
		return nil
	}
	return &model.PaperEmbedding{
		Id:        e.Id,
		ArxivId:   e.ArxivId,
		Embedding: pgvector.NewVector(e.Vector),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *PaperEmbeddingMapper) ToEntity(mod *model.PaperEmbedding) *entity.PaperEmbedding {
	if mod == nil {
		return nil
	}
	return &entity.PaperEmbedding{
		Id:        mod.Id,
		ArxivId:   mod.ArxivId,
		Vector:    mod.Embedding.Slice(),
		CreatedAt: mod.CreatedAt,
		UpdatedAt: mod.UpdatedAt,
	}
}
