package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/pkg/logger"
	"paper-brain-be/internal/repository/memory"
	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/brain"
	"paper-brain-be/pkg/chat"
	"paper-brain-be/pkg/events"
	"paper-brain-be/pkg/llm"
	pkgNats "paper-brain-be/pkg/nats"
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/quota"
	"paper-brain-be/pkg/store"
)

// Pipeline contracts, satisfied by brain.SearchPipeline, brain.LoadPipeline
// and chat.Pipeline.
type ISearchPipeline interface {
	Run(ctx context.Context, query string, observer pipeline.StepObserver) brain.SearchOutcome
}

type ILoadPipeline interface {
	Run(ctx context.Context, papers []arxiv.Paper, observer pipeline.StepObserver) brain.LoadOutcome
}

type IChatPipeline interface {
	Run(ctx context.Context, docs []store.PaperDocument, query string, observer pipeline.StepObserver) chat.Outcome
}

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Search(ctx context.Context, req *dto.BrainSearchRequest) (*dto.BrainSearchResponse, error)
	LoadPapers(ctx context.Context, req *dto.BrainLoadRequest) (*dto.BrainLoadResponse, error)
	SendMessage(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	Info(ctx context.Context, sessionId string) (*dto.SessionInfoResponse, error)
	ActiveSessions() int
}

type sessionService struct {
	sessionRepo    *memory.SessionRepository
	searchPipeline ISearchPipeline
	loadPipeline   ILoadPipeline
	chatPipeline   IChatPipeline
	quotaCfg       quota.Config
	publisher      IPublisherService
	natsPub        *pkgNats.Publisher
	sysLogger      logger.ILogger
}

func NewSessionService(
	sessionRepo *memory.SessionRepository,
	searchPipeline ISearchPipeline,
	loadPipeline ILoadPipeline,
	chatPipeline IChatPipeline,
	quotaCfg quota.Config,
	publisher IPublisherService,
	natsPub *pkgNats.Publisher,
	sysLogger logger.ILogger,
) ISessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		searchPipeline: searchPipeline,
		loadPipeline:   loadPipeline,
		chatPipeline:   chatPipeline,
		quotaCfg:       quotaCfg,
		publisher:      publisher,
		natsPub:        natsPub,
		sysLogger:      sysLogger,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	now := time.Now()
	session := &store.Session{
		ID:           uuid.NewString(),
		InitialQuery: req.InitialQuery,
		CreatedAt:    now,
		LastActivity: now,
		Quota:        quota.NewTracker(s.quotaCfg),
	}
	s.sessionRepo.Save(session)

	s.sysLogger.Info("session", "Session created", map[string]interface{}{
		"session_id":    session.ID,
		"initial_query": req.InitialQuery,
	})
	s.emitEvent(ctx, events.NewSessionCreated(session.ID, req.InitialQuery))

	return &dto.CreateSessionResponse{
		SessionId: session.ID,
		CreatedAt: session.CreatedAt,
		Message:   "Session created successfully",
	}, nil
}

// Search runs the paper discovery pipeline under the session's search
// budget. The admission check, the run and the counter increment form one
// critical section per session.
func (s *sessionService) Search(ctx context.Context, req *dto.BrainSearchRequest) (*dto.BrainSearchResponse, error) {
	session, found := s.sessionRepo.Get(req.SessionId)
	if !found {
		return nil, dto.ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if allowed, minutesLeft := session.Quota.CanUse(quota.KindSearch); !allowed {
		return nil, &quota.ExceededError{Kind: quota.KindSearch, MinutesLeft: minutesLeft}
	}

	start := time.Now()
	outcome := s.searchPipeline.Run(ctx, req.Query, nil)
	latency := time.Since(start).Milliseconds()

	if outcome.Err != nil {
		if llm.IsQuotaError(outcome.Err) {
			return nil, s.handleProviderExhaustion(ctx, session, quota.KindSearch, req.Query, latency, outcome.Err)
		}

		// Empty results and transport failures come back as data so the
		// completed steps stay visible.
		s.publishMetric(ctx, session.ID, "search", req.Query, &dto.RequestMetricMessage{
			Steps:     outcome.Steps,
			LatencyMs: latency,
			Error:     outcome.Err.Error(),
		})
		return &dto.BrainSearchResponse{
			ThinkingSteps:     outcome.Steps,
			Papers:            []store.PaperCandidate{},
			SearchesRemaining: session.Quota.Remaining(quota.KindSearch),
			Error:             outcome.Err.Error(),
		}, nil
	}

	session.Quota.Increment(quota.KindSearch)
	session.LastSearchResults = outcome.Papers
	session.SearchHistory = append(session.SearchHistory, store.SearchHistoryEntry{
		Query:       req.Query,
		PapersFound: len(outcome.Papers),
		Timestamp:   time.Now(),
	})
	session.LastActivity = time.Now()
	s.sessionRepo.Save(session)

	s.publishMetric(ctx, session.ID, "search", req.Query, &dto.RequestMetricMessage{
		Steps:       outcome.Steps,
		ResultCount: len(outcome.Papers),
		LatencyMs:   latency,
	})

	return &dto.BrainSearchResponse{
		ThinkingSteps:     outcome.Steps,
		Papers:            outcome.Papers,
		SearchesRemaining: session.Quota.Remaining(quota.KindSearch),
	}, nil
}

// LoadPapers ingests the selected candidates into the session workbench.
// Loading does not draw from either budget.
func (s *sessionService) LoadPapers(ctx context.Context, req *dto.BrainLoadRequest) (*dto.BrainLoadResponse, error) {
	session, found := s.sessionRepo.Get(req.SessionId)
	if !found {
		return nil, dto.ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	papers := s.resolveCandidates(session, req.PaperIds)

	start := time.Now()
	outcome := s.loadPipeline.Run(ctx, papers, nil)
	latency := time.Since(start).Milliseconds()

	if outcome.Err != nil {
		s.publishMetric(ctx, session.ID, "load", "", &dto.RequestMetricMessage{
			Steps:     outcome.Steps,
			LatencyMs: latency,
			Error:     outcome.Err.Error(),
		})
		return &dto.BrainLoadResponse{
			ThinkingSteps: outcome.Steps,
			LoadedPapers:  []string{},
			Status:        "failed",
			Error:         outcome.Err.Error(),
		}, nil
	}

	session.LoadedDocuments = outcome.Documents
	session.LoadedPaperTitles = outcome.LoadedPapers
	session.LastActivity = time.Now()
	s.sessionRepo.Save(session)

	s.publishMetric(ctx, session.ID, "load", "", &dto.RequestMetricMessage{
		Steps:       outcome.Steps,
		ResultCount: len(outcome.Documents),
		LatencyMs:   latency,
	})
	s.emitEvent(ctx, events.NewPapersLoaded(session.ID, len(outcome.LoadedPapers), len(outcome.Documents)))

	return &dto.BrainLoadResponse{
		ThinkingSteps: outcome.Steps,
		LoadedPapers:  outcome.LoadedPapers,
		Status:        "success",
	}, nil
}

// SendMessage answers a question over the loaded papers under the chat
// budget. The no-papers precondition is checked before quota so a misused
// session does not burn its budget.
func (s *sessionService) SendMessage(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	session, found := s.sessionRepo.Get(req.SessionId)
	if !found {
		return nil, dto.ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if len(session.LoadedDocuments) == 0 {
		return nil, chat.ErrNoPapersLoaded
	}

	if allowed, minutesLeft := session.Quota.CanUse(quota.KindChat); !allowed {
		return nil, &quota.ExceededError{Kind: quota.KindChat, MinutesLeft: minutesLeft}
	}

	start := time.Now()
	outcome := s.chatPipeline.Run(ctx, session.LoadedDocuments, req.Message, nil)
	latency := time.Since(start).Milliseconds()

	if outcome.Err != nil {
		if llm.IsQuotaError(outcome.Err) {
			return nil, s.handleProviderExhaustion(ctx, session, quota.KindChat, req.Message, latency, outcome.Err)
		}

		s.publishMetric(ctx, session.ID, "chat", req.Message, &dto.RequestMetricMessage{
			Steps:     outcome.Steps,
			LatencyMs: latency,
			Error:     outcome.Err.Error(),
		})
		return &dto.ChatMessageResponse{
			ThinkingSteps:     outcome.Steps,
			Citations:         []chat.Citation{},
			MessagesRemaining: session.Quota.Remaining(quota.KindChat),
			Error:             outcome.Err.Error(),
		}, nil
	}

	session.Quota.Increment(quota.KindChat)
	session.ChatHistory = append(session.ChatHistory, store.ChatHistoryEntry{
		Message:   req.Message,
		Answer:    outcome.Answer,
		Timestamp: time.Now(),
	})
	session.LastActivity = time.Now()
	s.sessionRepo.Save(session)

	s.publishMetric(ctx, session.ID, "chat", req.Message, &dto.RequestMetricMessage{
		Steps:       outcome.Steps,
		ResultCount: len(outcome.Citations),
		ChunksUsed:  outcome.ChunksUsed,
		LatencyMs:   latency,
	})

	return &dto.ChatMessageResponse{
		ThinkingSteps:     outcome.Steps,
		Answer:            outcome.Answer,
		Citations:         outcome.Citations,
		MessagesRemaining: session.Quota.Remaining(quota.KindChat),
	}, nil
}

func (s *sessionService) Info(ctx context.Context, sessionId string) (*dto.SessionInfoResponse, error) {
	session, found := s.sessionRepo.Get(sessionId)
	if !found {
		return nil, dto.ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	return &dto.SessionInfoResponse{
		SessionId:     session.ID,
		InitialQuery:  session.InitialQuery,
		CreatedAt:     session.CreatedAt,
		LastActivity:  session.LastActivity,
		LoadedPapers:  session.LoadedPaperTitles,
		QuotaStatus:   session.Quota.Status(),
		SearchesUsed:  session.Quota.Used(quota.KindSearch),
		MessagesUsed:  session.Quota.Used(quota.KindChat),
		SearchHistory: session.SearchHistory,
		ChatHistory:   session.ChatHistory,
	}, nil
}

func (s *sessionService) ActiveSessions() int {
	return s.sessionRepo.Count()
}

// handleProviderExhaustion starts the blanket cooldown and reports the
// failure. The local counter is NOT incremented and NOT reset.
func (s *sessionService) handleProviderExhaustion(ctx context.Context, session *store.Session, kind quota.Kind, query string, latency int64, cause error) error {
	session.Quota.MarkProviderExhausted()
	s.sessionRepo.Save(session)

	s.sysLogger.Warn("session", "Provider quota exhausted", map[string]interface{}{
		"session_id": session.ID,
		"kind":       string(kind),
		"error":      cause.Error(),
	})
	s.emitEvent(ctx, events.NewProviderExhausted(session.ID, string(kind)))
	s.publishMetric(ctx, session.ID, string(kind), query, &dto.RequestMetricMessage{
		LatencyMs: latency,
		Error:     cause.Error(),
	})

	return &dto.ProviderExhaustedError{
		CooldownMinutes: int(s.quotaCfg.ProviderCooldown.Minutes()),
	}
}

// resolveCandidates maps requested arXiv ids back to the metadata from the
// last search. Unknown ids still load, with the id standing in as title.
func (s *sessionService) resolveCandidates(session *store.Session, paperIds []string) []arxiv.Paper {
	byId := make(map[string]store.PaperCandidate, len(session.LastSearchResults))
	for _, c := range session.LastSearchResults {
		byId[c.ArxivId] = c
	}

	papers := make([]arxiv.Paper, 0, len(paperIds))
	for _, id := range paperIds {
		if c, ok := byId[id]; ok {
			papers = append(papers, arxiv.Paper{
				Title:    c.Title,
				Abstract: c.Abstract,
				Authors:  c.Authors,
				ArxivId:  c.ArxivId,
				URL:      c.URL,
			})
			continue
		}
		papers = append(papers, arxiv.Paper{Title: id, ArxivId: id})
	}
	return papers
}

// publishMetric is best-effort; a full metrics bus never blocks a request.
func (s *sessionService) publishMetric(ctx context.Context, sessionId, kind, query string, metric *dto.RequestMetricMessage) {
	if s.publisher == nil {
		return
	}
	metric.SessionId = sessionId
	metric.Kind = kind
	metric.Query = query
	metric.Timestamp = time.Now()

	if err := s.publisher.PublishMetric(ctx, metric); err != nil {
		s.sysLogger.Warn("metrics", "Failed to publish request metric", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// emitEvent publishes to NATS when a publisher is connected.
func (s *sessionService) emitEvent(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.natsPub.Publish(publishCtx, event); err != nil {
		s.sysLogger.Warn("events", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
