package dto

import (
	"paper-brain-be/pkg/chat"
	"paper-brain-be/pkg/pipeline"
)

type ChatMessageRequest struct {
	SessionId string `json:"session_id" validate:"required,uuid4"`
	Message   string `json:"message" validate:"required,max=2000"`
}

type ChatMessageResponse struct {
	ThinkingSteps     []pipeline.ThinkingStep `json:"thinking_steps"`
	Answer            string                  `json:"answer"`
	Citations         []chat.Citation         `json:"citations"`
	MessagesRemaining int                     `json:"messages_remaining"`
	Error             string                  `json:"error,omitempty"`
}
