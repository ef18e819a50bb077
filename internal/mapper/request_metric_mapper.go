package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/model"
	"paper-brain-be/pkg/pipeline"
)

type RequestMetricMapper struct{}

func NewRequestMetricMapper() *RequestMetricMapper {
	return &RequestMetricMapper{}
}

func (m *RequestMetricMapper) ToModel(e *entity.RequestMetric) *model.RequestLog {
	if e == nil {
		return nil
	}

	var steps datatypes.JSON
	if len(e.Steps) > 0 {
		if raw, err := json.Marshal(e.Steps); err == nil {
			steps = datatypes.JSON(raw)
		}
	}

	return &model.RequestLog{
		Id:          e.Id,
		SessionId:   e.SessionId,
		Kind:        e.Kind,
		Query:       e.Query,
		Steps:       steps,
		ResultCount: e.ResultCount,
		ChunksUsed:  e.ChunksUsed,
		LatencyMs:   e.LatencyMs,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *RequestMetricMapper) ToEntity(mod *model.RequestLog) *entity.RequestMetric {
	if mod == nil {
		return nil
	}

	var steps []pipeline.ThinkingStep
	if len(mod.Steps) > 0 {
		// Malformed rows keep a nil slice rather than failing the read.
		_ = json.Unmarshal(mod.Steps, &steps)
	}

	return &entity.RequestMetric{
		Id:          mod.Id,
		SessionId:   mod.SessionId,
		Kind:        mod.Kind,
		Query:       mod.Query,
		Steps:       steps,
		ResultCount: mod.ResultCount,
		ChunksUsed:  mod.ChunksUsed,
		LatencyMs:   mod.LatencyMs,
		Error:       mod.Error,
		CreatedAt:   mod.CreatedAt,
	}
}
