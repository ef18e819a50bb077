package service

import (
	"context"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/pkg/logger"
	"paper-brain-be/internal/repository/contract"
)

type IAdminService interface {
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, id string) (*dto.LogDetailResponse, error)
	GetSessionMetrics(ctx context.Context, sessionId string) ([]dto.RequestMetricResponse, error)
}

type adminService struct {
	sysLogger   logger.ILogger
	metricsRepo contract.RequestMetricRepository
}

func NewAdminService(sysLogger logger.ILogger, metricsRepo contract.RequestMetricRepository) IAdminService {
	return &adminService{
		sysLogger:   sysLogger,
		metricsRepo: metricsRepo,
	}
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	entries, err := s.sysLogger.GetLogs(level, limit, offset)
	if err != nil {
		return nil, err
	}

	logs := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, dto.LogListResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}
	return logs, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, id string) (*dto.LogDetailResponse, error) {
	entry, err := s.sysLogger.GetLogById(id)
	if err != nil {
		return nil, err
	}

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        entry.Id,
			Level:     entry.Level,
			Module:    entry.Module,
			Message:   entry.Message,
			Timestamp: entry.Timestamp,
		},
		Details: entry.Details,
	}, nil
}

func (s *adminService) GetSessionMetrics(ctx context.Context, sessionId string) ([]dto.RequestMetricResponse, error) {
	if s.metricsRepo == nil {
		return []dto.RequestMetricResponse{}, nil
	}

	metrics, err := s.metricsRepo.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.RequestMetricResponse, 0, len(metrics))
	for _, m := range metrics {
		res = append(res, dto.RequestMetricResponse{
			Id:          m.Id.String(),
			SessionId:   m.SessionId,
			Kind:        m.Kind,
			Query:       m.Query,
			Steps:       m.Steps,
			ResultCount: m.ResultCount,
			ChunksUsed:  m.ChunksUsed,
			LatencyMs:   m.LatencyMs,
			Error:       m.Error,
			CreatedAt:   m.CreatedAt,
		})
	}
	return res, nil
}
