package chat

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/rag"
	"paper-brain-be/pkg/store"
)

type fakeAnswerer struct {
	result *rag.Result
	err    error
	calls  int
}

func (f *fakeAnswerer) AnswerWithDocuments(ctx context.Context, docs []store.PaperDocument, query string) (*rag.Result, error) {
	f.calls++
	return f.result, f.err
}

func newTestPipeline(answerer Answerer) *Pipeline {
	return NewPipeline(answerer, log.New(io.Discard, "", 0))
}

func loadedDocs() []store.PaperDocument {
	return []store.PaperDocument{
		{Title: "Paper A", ArxivId: "2401.00001", Page: 1, Content: "alpha"},
	}
}

func TestRunRejectsWithoutLoadedPapers(t *testing.T) {
	answerer := &fakeAnswerer{}
	p := newTestPipeline(answerer)

	outcome := p.Run(context.Background(), nil, "what is attention?", nil)

	require.ErrorIs(t, outcome.Err, ErrNoPapersLoaded)
	assert.Empty(t, outcome.Steps, "rejection happens before any step is recorded")
	assert.Zero(t, answerer.calls, "the answering service must not be contacted")
}

func TestRunHappyPath(t *testing.T) {
	answerer := &fakeAnswerer{result: &rag.Result{
		Answer:          "Attention scales quadratically [Paper A, Page 3].",
		ChunksRetrieved: 5,
	}}
	p := newTestPipeline(answerer)

	outcome := p.Run(context.Background(), loadedDocs(), "how does attention scale?", nil)

	require.NoError(t, outcome.Err)
	assert.Equal(t, "Attention scales quadratically [Paper A, Page 3].", outcome.Answer)
	require.Len(t, outcome.Citations, 1)
	assert.Equal(t, Citation{Paper: "Paper A", Page: 3}, outcome.Citations[0])

	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, pipeline.StepRouting, outcome.Steps[0].Step)
	assert.Equal(t, pipeline.StepGenerating, outcome.Steps[1].Step)
	for _, step := range outcome.Steps {
		assert.Equal(t, pipeline.StatusComplete, step.Status)
	}
}

func TestRunStripsBoldMarkers(t *testing.T) {
	answerer := &fakeAnswerer{result: &rag.Result{
		Answer: "The **key** finding is **robustness** [Paper A, Page 1].",
	}}
	p := newTestPipeline(answerer)

	outcome := p.Run(context.Background(), loadedDocs(), "findings?", nil)

	require.NoError(t, outcome.Err)
	assert.Equal(t, "The key finding is robustness [Paper A, Page 1].", outcome.Answer)
}

func TestRunQuotaErrorSurfaces(t *testing.T) {
	answerer := &fakeAnswerer{err: &llm.QuotaError{Message: "RESOURCE_EXHAUSTED"}}
	p := newTestPipeline(answerer)

	outcome := p.Run(context.Background(), loadedDocs(), "anything", nil)

	require.Error(t, outcome.Err)
	assert.True(t, llm.IsQuotaError(outcome.Err))
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, pipeline.StatusFailed, outcome.Steps[0].Status)
}

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []Citation
	}{
		{
			name:   "dedupe preserves first-seen order",
			answer: "See [Paper A, Page 3] and again [Paper A, Page 3], plus [Paper B, Page 1].",
			want: []Citation{
				{Paper: "Paper A", Page: 3},
				{Paper: "Paper B", Page: 1},
			},
		},
		{
			name:   "same paper different pages are distinct",
			answer: "[Paper A, Page 3] then [Paper A, Page 4]",
			want: []Citation{
				{Paper: "Paper A", Page: 3},
				{Paper: "Paper A", Page: 4},
			},
		},
		{
			name:   "no citations",
			answer: "The answer mentions no sources.",
			want:   []Citation{},
		},
		{
			name:   "malformed brackets ignored",
			answer: "[Paper A Page 3] and [Paper B, Page x] are not citations.",
			want:   []Citation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCitations(tt.answer)
			assert.Equal(t, tt.want, got)
		})
	}
}
