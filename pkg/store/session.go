package store

import (
	"sync"
	"time"

	"paper-brain-be/pkg/quota"
)

// PaperCandidate is one search result surfaced to the user.
// Score is populated only by the ranking stage (1 - distance, 3 decimals).
type PaperCandidate struct {
	Title    string   `json:"title"`
	Authors  string   `json:"authors"`
	Abstract string   `json:"abstract"`
	ArxivId  string   `json:"arxiv_id"`
	URL      string   `json:"url"`
	Score    *float64 `json:"score,omitempty"`
}

// PaperDocument is one page of an ingested paper, ready for RAG.
type PaperDocument struct {
	Title   string `json:"title"`
	ArxivId string `json:"arxiv_id"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// SearchHistoryEntry records one completed brain search
type SearchHistoryEntry struct {
	Query       string    `json:"query"`
	PapersFound int       `json:"papers_found"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChatHistoryEntry records one completed chat exchange
type ChatHistoryEntry struct {
	Message   string    `json:"message"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the active in-memory state for one user session.
// The tracker and the loaded document set are owned exclusively by this
// session; Mu serializes admission-check-then-invoke per session.
type Session struct {
	ID           string    `json:"id"`
	InitialQuery string    `json:"initial_query"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`

	Quota *quota.Tracker `json:"-"`

	// THE WORKBENCH (papers ingested and queryable via chat)
	LoadedDocuments   []PaperDocument `json:"-"`
	LoadedPaperTitles []string        `json:"loaded_papers"`

	// Candidates from the most recent search, kept so a load request can
	// resolve arXiv ids back to their metadata.
	LastSearchResults []PaperCandidate `json:"-"`

	SearchHistory []SearchHistoryEntry `json:"search_history"`
	ChatHistory   []ChatHistoryEntry   `json:"chat_history"`

	Mu sync.Mutex `json:"-"`
}
