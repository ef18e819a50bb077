package dto

import (
	"errors"
	"time"

	"paper-brain-be/pkg/quota"
	"paper-brain-be/pkg/store"
)

// ErrSessionNotFound is returned when a session id does not resolve to an
// active session (unknown or expired).
var ErrSessionNotFound = errors.New("session not found")

// ProviderExhaustedError signals the upstream AI provider is out of quota.
// Distinct from a local budget denial: it blocks both kinds for the full
// provider cooldown.
type ProviderExhaustedError struct {
	CooldownMinutes int
}

func (e *ProviderExhaustedError) Error() string {
	return "api quota exhausted"
}

type CreateSessionRequest struct {
	InitialQuery string `json:"initial_query" validate:"required,max=500"`
}

type CreateSessionResponse struct {
	SessionId string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}

type SessionInfoResponse struct {
	SessionId     string                     `json:"session_id"`
	InitialQuery  string                     `json:"initial_query"`
	CreatedAt     time.Time                  `json:"created_at"`
	LastActivity  time.Time                  `json:"last_activity"`
	LoadedPapers  []string                   `json:"loaded_papers"`
	QuotaStatus   quota.Status               `json:"quota_status"`
	SearchesUsed  int                        `json:"searches_used"`
	MessagesUsed  int                        `json:"messages_used"`
	SearchHistory []store.SearchHistoryEntry `json:"search_history"`
	ChatHistory   []store.ChatHistoryEntry   `json:"chat_history"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}
