package brain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/embedding"
	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/rank"
	"paper-brain-be/pkg/store"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

type fakeSearcher struct {
	papers []arxiv.Paper
	err    error
	query  string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, error) {
	f.query = query
	return f.papers, f.err
}

// fakeEmbedder assigns each distinct text a progressively more distant
// vector, so earlier candidates rank higher.
type fakeEmbedder struct {
	next    int
	vectors map[string][]float32
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.vectors == nil {
		f.vectors = map[string][]float32{}
	}
	vec, ok := f.vectors[text]
	if !ok {
		angle := float32(f.next) * 0.05
		vec = []float32{1 - angle, angle}
		f.next++
		f.vectors[text] = vec
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func newTestSearchPipeline(llmProvider llm.LLMProvider, searcher PaperSearcher) *SearchPipeline {
	logger := log.New(io.Discard, "", 0)
	ranker := rank.NewEngine(&fakeEmbedder{}, nil, logger)
	return NewSearchPipeline(llmProvider, searcher, ranker, logger)
}

func candidatePapers(n int) []arxiv.Paper {
	papers := make([]arxiv.Paper, 0, n)
	for i := 0; i < n; i++ {
		papers = append(papers, arxiv.Paper{
			Title:    fmt.Sprintf("Paper %d", i),
			Abstract: fmt.Sprintf("Abstract number %d about attention.", i),
			Authors:  "A. Author",
			ArxivId:  fmt.Sprintf("2401.%05d", i),
			URL:      fmt.Sprintf("http://arxiv.org/abs/2401.%05d", i),
		})
	}
	return papers
}

func TestSearchRunHappyPath(t *testing.T) {
	searcher := &fakeSearcher{papers: candidatePapers(15)}
	p := newTestSearchPipeline(&fakeLLM{response: `"transformer attention mechanisms"`}, searcher)

	outcome := p.Run(context.Background(), "papers about transformers", nil)

	require.NoError(t, outcome.Err)
	assert.Equal(t, "transformer attention mechanisms", searcher.query, "fetch should use the rewritten query with quotes stripped")

	require.Len(t, outcome.Steps, 3)
	assert.Equal(t, pipeline.StepRewriting, outcome.Steps[0].Step)
	assert.Equal(t, pipeline.StepSearching, outcome.Steps[1].Step)
	assert.Equal(t, pipeline.StepRanking, outcome.Steps[2].Step)
	for _, step := range outcome.Steps {
		assert.Equal(t, pipeline.StatusComplete, step.Status)
	}
	assert.Equal(t, "15 papers found", outcome.Steps[1].Result)
	assert.Equal(t, "10 papers ranked", outcome.Steps[2].Result)

	require.Len(t, outcome.Papers, 10, "ranking keeps at most 10 of 15")
	for i, paper := range outcome.Papers {
		require.NotNil(t, paper.Score)
		if i > 0 {
			assert.GreaterOrEqual(t, *outcome.Papers[i-1].Score, *paper.Score, "scores must descend")
		}
	}
}

func TestSearchRunFewerCandidatesThanRankLimit(t *testing.T) {
	p := newTestSearchPipeline(&fakeLLM{response: "q"}, &fakeSearcher{papers: candidatePapers(4)})

	outcome := p.Run(context.Background(), "q", nil)

	require.NoError(t, outcome.Err)
	assert.Len(t, outcome.Papers, 4)
}

func TestSearchRunEmptyResult(t *testing.T) {
	p := newTestSearchPipeline(&fakeLLM{response: "gibberish"}, &fakeSearcher{})

	outcome := p.Run(context.Background(), "gibberish", nil)

	var empty *EmptyResultError
	require.ErrorAs(t, outcome.Err, &empty)
	assert.Equal(t, "No papers found. Try a different query.", empty.Message)
	assert.Empty(t, outcome.Papers)

	require.Len(t, outcome.Steps, 2, "no ranking step after an empty fetch")
	assert.Equal(t, pipeline.StatusComplete, outcome.Steps[0].Status)
	assert.Equal(t, pipeline.StatusComplete, outcome.Steps[1].Status)
	assert.Equal(t, "0 papers found", outcome.Steps[1].Result)
}

func TestSearchRunRewriteQuotaFailure(t *testing.T) {
	p := newTestSearchPipeline(&fakeLLM{err: &llm.QuotaError{Message: "429"}}, &fakeSearcher{})

	outcome := p.Run(context.Background(), "anything", nil)

	require.Error(t, outcome.Err)
	assert.True(t, llm.IsQuotaError(outcome.Err))
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, pipeline.StatusFailed, outcome.Steps[0].Status)
}

func TestSearchRunTransportFailure(t *testing.T) {
	searchErr := errors.New("connection refused")
	p := newTestSearchPipeline(&fakeLLM{response: "q"}, &fakeSearcher{err: searchErr})

	outcome := p.Run(context.Background(), "q", nil)

	require.ErrorIs(t, outcome.Err, searchErr)
	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, pipeline.StatusFailed, outcome.Steps[1].Status)
}

func TestSearchRunNotifiesObserver(t *testing.T) {
	p := newTestSearchPipeline(&fakeLLM{response: "q"}, &fakeSearcher{papers: candidatePapers(2)})

	var seen []pipeline.ThinkingStep
	outcome := p.Run(context.Background(), "q", func(step pipeline.ThinkingStep) {
		seen = append(seen, step)
	})

	require.NoError(t, outcome.Err)
	// Each of the 3 stages notifies twice: in_progress then complete.
	assert.Len(t, seen, 6)
	assert.Equal(t, pipeline.StatusInProgress, seen[0].Status)
	assert.Equal(t, pipeline.StatusComplete, seen[1].Status)
}

type fakeLoader struct {
	docs map[string][]store.PaperDocument
	errs map[string]error
}

func (f *fakeLoader) Ingest(ctx context.Context, p arxiv.Paper) ([]store.PaperDocument, error) {
	if err, ok := f.errs[p.ArxivId]; ok {
		return nil, err
	}
	return f.docs[p.ArxivId], nil
}

func TestLoadRunPartialFailureTolerated(t *testing.T) {
	loader := &fakeLoader{
		docs: map[string][]store.PaperDocument{
			"2401.00001": {
				{Title: "Good Paper", ArxivId: "2401.00001", Page: 1, Content: "text"},
				{Title: "Good Paper", ArxivId: "2401.00001", Page: 2, Content: "more"},
			},
		},
		errs: map[string]error{
			"2401.00002": errors.New("corrupt pdf"),
		},
	}
	p := NewLoadPipeline(loader, log.New(io.Discard, "", 0))

	outcome := p.Run(context.Background(), []arxiv.Paper{
		{Title: "Good Paper", ArxivId: "2401.00001"},
		{Title: "Bad Paper", ArxivId: "2401.00002"},
	}, nil)

	require.NoError(t, outcome.Err)
	assert.Len(t, outcome.Documents, 2)
	assert.Equal(t, []string{"Good Paper"}, outcome.LoadedPapers)

	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, pipeline.StepLoading, outcome.Steps[0].Step)
	assert.Equal(t, pipeline.StatusComplete, outcome.Steps[0].Status)
	assert.Equal(t, "2 documents loaded from 1 papers", outcome.Steps[0].Result)
}

func TestLoadRunNothingLoadedIsAnError(t *testing.T) {
	loader := &fakeLoader{errs: map[string]error{"x": errors.New("boom")}}
	p := NewLoadPipeline(loader, log.New(io.Discard, "", 0))

	outcome := p.Run(context.Background(), []arxiv.Paper{{ArxivId: "x"}}, nil)

	require.Error(t, outcome.Err)
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, pipeline.StatusFailed, outcome.Steps[0].Status)
}
