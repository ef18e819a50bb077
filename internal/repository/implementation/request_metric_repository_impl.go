package implementation

import (
	"context"

	"gorm.io/gorm"

	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/mapper"
	"paper-brain-be/internal/model"
	"paper-brain-be/internal/repository/contract"
)

type RequestMetricRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RequestMetricMapper
}

func NewRequestMetricRepository(db *gorm.DB) contract.RequestMetricRepository {
	return &RequestMetricRepositoryImpl{
		db:     db,
		mapper: mapper.NewRequestMetricMapper(),
	}
}

func (r *RequestMetricRepositoryImpl) Create(ctx context.Context, metric *entity.RequestMetric) error {
	m := r.mapper.ToModel(metric)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*metric = *r.mapper.ToEntity(m)
	return nil
}

func (r *RequestMetricRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) ([]entity.RequestMetric, error) {
	var models []model.RequestLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	metrics := make([]entity.RequestMetric, 0, len(models))
	for i := range models {
		metrics = append(metrics, *r.mapper.ToEntity(&models[i]))
	}
	return metrics, nil
}
