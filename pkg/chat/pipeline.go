package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/rag"
	"paper-brain-be/pkg/store"
)

// ErrNoPapersLoaded rejects a chat before any external call is made.
var ErrNoPapersLoaded = errors.New("no papers loaded, load papers first")

// Answerer produces a grounded answer over the loaded documents.
type Answerer interface {
	AnswerWithDocuments(ctx context.Context, docs []store.PaperDocument, query string) (*rag.Result, error)
}

var _ Answerer = (*rag.Answerer)(nil)

// Outcome is everything a chat run produced, errors included.
type Outcome struct {
	Steps      []pipeline.ThinkingStep
	Answer     string
	Citations  []Citation
	ChunksUsed int
	Err        error
}

// Pipeline answers a question over the session's loaded papers. The
// retrieval and generation work is delegated to the answering service; this
// pipeline records observable steps around the call and extracts citations
// from the answer text.
type Pipeline struct {
	answerer Answerer
	logger   *log.Logger
}

func NewPipeline(answerer Answerer, logger *log.Logger) *Pipeline {
	return &Pipeline{
		answerer: answerer,
		logger:   logger,
	}
}

// Run executes the chat pipeline. A session with nothing loaded is rejected
// up front with ErrNoPapersLoaded and no steps recorded.
func (p *Pipeline) Run(ctx context.Context, docs []store.PaperDocument, query string, observer pipeline.StepObserver) Outcome {
	if len(docs) == 0 {
		return Outcome{Err: ErrNoPapersLoaded}
	}

	rec := pipeline.NewRecorder(observer)

	rec.Start(pipeline.StepRouting)
	result, err := p.answerer.AnswerWithDocuments(ctx, docs, query)
	if err != nil {
		rec.Fail(fmt.Sprintf("answer failed: %v", err))
		return Outcome{Steps: rec.Steps(), Err: err}
	}
	rec.Complete("query routed")

	rec.Start(pipeline.StepGenerating)
	answer := strings.ReplaceAll(result.Answer, "**", "")
	citations := ExtractCitations(answer)
	rec.Complete("answer generated")

	p.logger.Printf("[DEBUG] Chat answered with %d citations from %d chunks", len(citations), result.ChunksRetrieved)

	return Outcome{
		Steps:      rec.Steps(),
		Answer:     answer,
		Citations:  citations,
		ChunksUsed: result.ChunksRetrieved,
	}
}
