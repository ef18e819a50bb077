package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/mapper"
	"paper-brain-be/internal/model"
	"paper-brain-be/internal/repository/contract"
)

type PaperEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaperEmbeddingMapper
}

func NewPaperEmbeddingRepository(db *gorm.DB) contract.PaperEmbeddingRepository {
	return &PaperEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaperEmbeddingMapper(),
	}
}

func (r *PaperEmbeddingRepositoryImpl) FindByArxivId(ctx context.Context, arxivId string) (*entity.PaperEmbedding, error) {
	var m model.PaperEmbedding
	err := r.db.WithContext(ctx).Where("arxiv_id = ?", arxivId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaperEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.PaperEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "arxiv_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}
