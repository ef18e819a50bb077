package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/pkg/logger"
	"paper-brain-be/internal/repository/memory"
	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/brain"
	"paper-brain-be/pkg/chat"
	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/quota"
	"paper-brain-be/pkg/store"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type stubSearchPipeline struct {
	outcome brain.SearchOutcome
	calls   int
}

func (s *stubSearchPipeline) Run(ctx context.Context, query string, observer pipeline.StepObserver) brain.SearchOutcome {
	s.calls++
	return s.outcome
}

type stubLoadPipeline struct {
	outcome brain.LoadOutcome
	papers  []arxiv.Paper
}

func (s *stubLoadPipeline) Run(ctx context.Context, papers []arxiv.Paper, observer pipeline.StepObserver) brain.LoadOutcome {
	s.papers = papers
	return s.outcome
}

type stubChatPipeline struct {
	outcome chat.Outcome
	calls   int
}

func (s *stubChatPipeline) Run(ctx context.Context, docs []store.PaperDocument, query string, observer pipeline.StepObserver) chat.Outcome {
	s.calls++
	return s.outcome
}

type recordingPublisher struct {
	metrics []dto.RequestMetricMessage
}

func (p *recordingPublisher) PublishMetric(ctx context.Context, metric *dto.RequestMetricMessage) error {
	p.metrics = append(p.metrics, *metric)
	return nil
}

type fixture struct {
	svc       ISessionService
	search    *stubSearchPipeline
	load      *stubLoadPipeline
	chat      *stubChatPipeline
	publisher *recordingPublisher
	sessionId string
	repo      *memory.SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	search := &stubSearchPipeline{}
	load := &stubLoadPipeline{}
	chatStub := &stubChatPipeline{}
	publisher := &recordingPublisher{}
	repo := memory.NewSessionRepository(time.Hour)

	svc := NewSessionService(
		repo,
		search,
		load,
		chatStub,
		quota.DefaultConfig(),
		publisher,
		nil,
		noopLogger{},
	)

	created, err := svc.Create(context.Background(), &dto.CreateSessionRequest{InitialQuery: "attention"})
	require.NoError(t, err)

	return &fixture{
		svc:       svc,
		search:    search,
		load:      load,
		chat:      chatStub,
		publisher: publisher,
		sessionId: created.SessionId,
		repo:      repo,
	}
}

func successfulSearchOutcome(n int) brain.SearchOutcome {
	papers := make([]store.PaperCandidate, 0, n)
	for i := 0; i < n; i++ {
		papers = append(papers, store.PaperCandidate{
			Title:   "Paper",
			ArxivId: "2401.0000" + string(rune('0'+i)),
		})
	}
	return brain.SearchOutcome{
		Steps: []pipeline.ThinkingStep{
			{Step: pipeline.StepRewriting, Status: pipeline.StatusComplete},
			{Step: pipeline.StepSearching, Status: pipeline.StatusComplete},
			{Step: pipeline.StepRanking, Status: pipeline.StatusComplete},
		},
		Papers: papers,
	}
}

func TestSearchUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: "missing", Query: "q"})

	require.ErrorIs(t, err, dto.ErrSessionNotFound)
}

func TestSearchBudgetExhaustion(t *testing.T) {
	f := newFixture(t)
	f.search.outcome = successfulSearchOutcome(2)

	for i := 0; i < 3; i++ {
		res, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "q"})
		require.NoError(t, err)
		assert.Equal(t, 2-i, res.SearchesRemaining)
	}

	_, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "q"})
	var exceeded *quota.ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, quota.KindSearch, exceeded.Kind)
	assert.Equal(t, 15, exceeded.MinutesLeft)
	assert.Equal(t, 3, f.search.calls, "denied request must not reach the pipeline")
}

func TestSearchEmptyResultDoesNotBurnBudget(t *testing.T) {
	f := newFixture(t)
	f.search.outcome = brain.SearchOutcome{
		Steps: []pipeline.ThinkingStep{
			{Step: pipeline.StepRewriting, Status: pipeline.StatusComplete},
			{Step: pipeline.StepSearching, Status: pipeline.StatusComplete},
		},
		Err: &brain.EmptyResultError{Message: "No papers found. Try a different query."},
	}

	res, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "gibberish"})

	require.NoError(t, err, "empty result is a terminal state, not a transport error")
	assert.Equal(t, "No papers found. Try a different query.", res.Error)
	assert.Len(t, res.ThinkingSteps, 2)
	assert.Equal(t, 3, res.SearchesRemaining, "failed runs do not consume the budget")
}

func TestSearchProviderExhaustionBlocksBothKinds(t *testing.T) {
	f := newFixture(t)
	f.search.outcome = brain.SearchOutcome{Err: &llm.QuotaError{Message: "429"}}

	_, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "q"})

	var provider *dto.ProviderExhaustedError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, 30, provider.CooldownMinutes)

	// The blanket cooldown rejects chat too, even with papers loaded.
	session, found := f.repo.Get(f.sessionId)
	require.True(t, found)
	session.LoadedDocuments = []store.PaperDocument{{Title: "P", Page: 1, Content: "x"}}

	_, err = f.svc.SendMessage(context.Background(), &dto.ChatMessageRequest{SessionId: f.sessionId, Message: "hi"})
	var exceeded *quota.ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 30, exceeded.MinutesLeft)
	assert.Zero(t, f.chat.calls)
}

func TestSendMessageRequiresLoadedPapers(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), &dto.ChatMessageRequest{SessionId: f.sessionId, Message: "hi"})

	require.ErrorIs(t, err, chat.ErrNoPapersLoaded)
	assert.Zero(t, f.chat.calls)
}

func TestSendMessageHappyPath(t *testing.T) {
	f := newFixture(t)
	session, found := f.repo.Get(f.sessionId)
	require.True(t, found)
	session.LoadedDocuments = []store.PaperDocument{{Title: "P", Page: 1, Content: "x"}}

	f.chat.outcome = chat.Outcome{
		Steps: []pipeline.ThinkingStep{
			{Step: pipeline.StepRouting, Status: pipeline.StatusComplete},
			{Step: pipeline.StepGenerating, Status: pipeline.StatusComplete},
		},
		Answer:     "Answer [P, Page 1].",
		Citations:  []chat.Citation{{Paper: "P", Page: 1}},
		ChunksUsed: 1,
	}

	res, err := f.svc.SendMessage(context.Background(), &dto.ChatMessageRequest{SessionId: f.sessionId, Message: "what?"})

	require.NoError(t, err)
	assert.Equal(t, "Answer [P, Page 1].", res.Answer)
	assert.Equal(t, 4, res.MessagesRemaining)

	info, err := f.svc.Info(context.Background(), f.sessionId)
	require.NoError(t, err)
	assert.Equal(t, 1, info.MessagesUsed)
	require.Len(t, info.ChatHistory, 1)
	assert.Equal(t, "what?", info.ChatHistory[0].Message)
}

func TestLoadResolvesCandidatesFromLastSearch(t *testing.T) {
	f := newFixture(t)
	f.search.outcome = successfulSearchOutcome(3)
	_, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "q"})
	require.NoError(t, err)

	f.load.outcome = brain.LoadOutcome{
		Steps: []pipeline.ThinkingStep{
			{Step: pipeline.StepLoading, Status: pipeline.StatusComplete},
		},
		Documents:    []store.PaperDocument{{Title: "Paper", ArxivId: "2401.00001", Page: 1, Content: "x"}},
		LoadedPapers: []string{"Paper"},
	}

	res, err := f.svc.LoadPapers(context.Background(), &dto.BrainLoadRequest{
		SessionId: f.sessionId,
		PaperIds:  []string{"2401.00001", "9999.99999"},
	})

	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	require.Len(t, f.load.papers, 2)
	assert.Equal(t, "Paper", f.load.papers[0].Title, "known id resolves to its search metadata")
	assert.Equal(t, "9999.99999", f.load.papers[1].Title, "unknown id falls back to the id itself")
}

func TestMetricsPublishedOnSuccessAndFailure(t *testing.T) {
	f := newFixture(t)
	f.search.outcome = successfulSearchOutcome(2)
	_, err := f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "good"})
	require.NoError(t, err)

	f.search.outcome = brain.SearchOutcome{Err: errors.New("connection refused")}
	_, err = f.svc.Search(context.Background(), &dto.BrainSearchRequest{SessionId: f.sessionId, Query: "bad"})
	require.NoError(t, err)

	require.Len(t, f.publisher.metrics, 2)
	assert.Equal(t, "search", f.publisher.metrics[0].Kind)
	assert.Equal(t, 2, f.publisher.metrics[0].ResultCount)
	assert.Empty(t, f.publisher.metrics[0].Error)
	assert.Equal(t, "connection refused", f.publisher.metrics[1].Error)
}
