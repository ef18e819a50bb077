package dto

import (
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/store"
)

type BrainSearchRequest struct {
	SessionId string `json:"session_id" validate:"required,uuid4"`
	Query     string `json:"query" validate:"required,max=500"`
}

type BrainSearchResponse struct {
	ThinkingSteps     []pipeline.ThinkingStep `json:"thinking_steps"`
	Papers            []store.PaperCandidate  `json:"papers"`
	SearchesRemaining int                     `json:"searches_remaining"`
	Error             string                  `json:"error,omitempty"`
}

type BrainLoadRequest struct {
	SessionId string   `json:"session_id" validate:"required,uuid4"`
	PaperIds  []string `json:"paper_ids" validate:"required,min=1,max=5"`
}

type BrainLoadResponse struct {
	ThinkingSteps []pipeline.ThinkingStep `json:"thinking_steps"`
	LoadedPapers  []string                `json:"loaded_papers"`
	Status        string                  `json:"status"`
	Error         string                  `json:"error,omitempty"`
}
