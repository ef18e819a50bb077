package dto

import (
	"time"

	"paper-brain-be/pkg/pipeline"
)

// RequestMetricResponse is one persisted pipeline run, as shown on the
// admin dashboard.
type RequestMetricResponse struct {
	Id          string                  `json:"id"`
	SessionId   string                  `json:"session_id"`
	Kind        string                  `json:"kind"`
	Query       string                  `json:"query"`
	Steps       []pipeline.ThinkingStep `json:"steps"`
	ResultCount int                     `json:"result_count"`
	ChunksUsed  int                     `json:"chunks_used"`
	LatencyMs   int64                   `json:"latency_ms"`
	Error       string                  `json:"error,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// RequestMetricMessage is the payload published on the metrics topic after
// every pipeline run, successful or not. The consumer persists it.
type RequestMetricMessage struct {
	SessionId   string                  `json:"session_id"`
	Kind        string                  `json:"kind"` // "search", "load" or "chat"
	Query       string                  `json:"query"`
	Steps       []pipeline.ThinkingStep `json:"steps"`
	ResultCount int                     `json:"result_count"`
	ChunksUsed  int                     `json:"chunks_used,omitempty"`
	LatencyMs   int64                   `json:"latency_ms"`
	Error       string                  `json:"error,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
}
