package contract

import (
	"context"

	"paper-brain-be/internal/entity"
)

type RequestMetricRepository interface {
	Create(ctx context.Context, metric *entity.RequestMetric) error
	FindBySessionId(ctx context.Context, sessionId string) ([]entity.RequestMetric, error)
}
