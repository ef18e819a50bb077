package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation for ad-hoc events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Session lifecycle events emitted on the bus.
const (
	TypeSessionCreated    = "SESSION_CREATED"
	TypePapersLoaded      = "PAPERS_LOADED"
	TypeProviderExhausted = "PROVIDER_EXHAUSTED"
)

func NewSessionCreated(sessionId, initialQuery string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id":    sessionId,
			"initial_query": initialQuery,
		},
		OccurredAt: time.Now(),
	}
}

func NewPapersLoaded(sessionId string, paperCount, documentCount int) Event {
	return BaseEvent{
		Type: TypePapersLoaded,
		Data: map[string]interface{}{
			"session_id":     sessionId,
			"paper_count":    paperCount,
			"document_count": documentCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewProviderExhausted(sessionId, kind string) Event {
	return BaseEvent{
		Type: TypeProviderExhausted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"kind":       kind,
		},
		OccurredAt: time.Now(),
	}
}
