package entity

import (
	"time"

	"github.com/google/uuid"

	"paper-brain-be/pkg/pipeline"
)

type RequestMetric struct {
	Id          uuid.UUID
	SessionId   string
	Kind        string
	Query       string
	Steps       []pipeline.ThinkingStep
	ResultCount int
	ChunksUsed  int
	LatencyMs   int64
	Error       string
	CreatedAt   time.Time
}
