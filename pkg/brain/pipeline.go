package brain

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/paper"
	"paper-brain-be/pkg/pipeline"
	"paper-brain-be/pkg/rank"
	"paper-brain-be/pkg/store"
)

const (
	fetchLimit = 15
	rankLimit  = 10
)

// EmptyResultError is a non-error terminal state: the search ran fine but
// nothing came back. Carries the user-facing message.
type EmptyResultError struct {
	Message string
}

func (e *EmptyResultError) Error() string {
	return e.Message
}

// PaperSearcher fetches candidate papers from an external source.
type PaperSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, error)
}

// SearchOutcome is everything a search run produced, errors included.
// Steps are always populated up to the point of failure.
type SearchOutcome struct {
	Steps  []pipeline.ThinkingStep
	Papers []store.PaperCandidate
	Err    error
}

// LoadOutcome is the result of ingesting selected papers for chat.
type LoadOutcome struct {
	Steps        []pipeline.ThinkingStep
	Documents    []store.PaperDocument
	LoadedPapers []string
	Err          error
}

// SearchPipeline runs the three-stage paper discovery flow:
// rewrite the query, fetch candidates, rank them by semantic similarity.
type SearchPipeline struct {
	llmProvider llm.LLMProvider
	searcher    PaperSearcher
	ranker      *rank.Engine
	logger      *log.Logger
}

func NewSearchPipeline(llmProvider llm.LLMProvider, searcher PaperSearcher, ranker *rank.Engine, logger *log.Logger) *SearchPipeline {
	return &SearchPipeline{
		llmProvider: llmProvider,
		searcher:    searcher,
		ranker:      ranker,
		logger:      logger,
	}
}

// Run executes the search pipeline. Errors come back inside the outcome so
// partial steps stay visible to the caller.
func (p *SearchPipeline) Run(ctx context.Context, query string, observer pipeline.StepObserver) SearchOutcome {
	rec := pipeline.NewRecorder(observer)

	// Stage 1: semantic rewrite
	rec.Start(pipeline.StepRewriting)
	semanticQuery, err := p.rewriteQuery(ctx, query)
	if err != nil {
		rec.Fail(fmt.Sprintf("query rewrite failed: %v", err))
		return SearchOutcome{Steps: rec.Steps(), Err: err}
	}
	rec.Complete(semanticQuery)

	// Stage 2: fetch candidates
	rec.Start(pipeline.StepSearching)
	fetched, err := p.searcher.Search(ctx, semanticQuery, fetchLimit)
	if err != nil {
		rec.Fail(fmt.Sprintf("search failed: %v", err))
		return SearchOutcome{Steps: rec.Steps(), Err: err}
	}
	rec.Complete(fmt.Sprintf("%d papers found", len(fetched)))

	if len(fetched) == 0 {
		return SearchOutcome{
			Steps: rec.Steps(),
			Err:   &EmptyResultError{Message: "No papers found. Try a different query."},
		}
	}

	// Stage 3: rank by abstract similarity to the rewritten query
	rec.Start(pipeline.StepRanking)
	ranked, err := p.rankPapers(ctx, semanticQuery, fetched)
	if err != nil {
		rec.Fail(fmt.Sprintf("ranking failed: %v", err))
		return SearchOutcome{Steps: rec.Steps(), Err: err}
	}
	rec.Complete(fmt.Sprintf("%d papers ranked", len(ranked)))

	return SearchOutcome{Steps: rec.Steps(), Papers: ranked}
}

const rewritePromptTemplate = `You are a research paper search optimizer. Rewrite the user's query into an optimal arXiv search string.

CONSTRAINTS:
- Use technical terms and keywords
- Use clean punctuation marks
- Remove filler words (e.g., "papers about", "research on")
- Focus on core concepts
- Keep domain-specific terminology

USER QUERY: "%s"

OUTPUT (search string only, no explanation):`

func (p *SearchPipeline) rewriteQuery(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(rewritePromptTemplate, query)

	response, err := p.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return "", err
	}

	rewritten := strings.Trim(strings.TrimSpace(response), `"`)
	if rewritten == "" {
		// A blank rewrite would turn the fetch into a match-all query.
		return query, nil
	}

	p.logger.Printf("[DEBUG] Query rewritten: %q -> %q", query, rewritten)
	return rewritten, nil
}

func (p *SearchPipeline) rankPapers(ctx context.Context, semanticQuery string, fetched []arxiv.Paper) ([]store.PaperCandidate, error) {
	abstracts := make([]string, len(fetched))
	keys := make([]string, len(fetched))
	for i, f := range fetched {
		abstracts[i] = f.Abstract
		keys[i] = f.ArxivId
	}

	topK := rankLimit
	if len(fetched) < topK {
		topK = len(fetched)
	}

	matches, err := p.ranker.RankBySimilarity(ctx, semanticQuery, abstracts, keys, topK)
	if err != nil {
		return nil, err
	}

	ranked := make([]store.PaperCandidate, 0, len(matches))
	for _, m := range matches {
		f := fetched[m.Index]
		score := math.Round((1-m.Distance)*1000) / 1000
		ranked = append(ranked, store.PaperCandidate{
			Title:    f.Title,
			Authors:  f.Authors,
			Abstract: f.Abstract,
			ArxivId:  f.ArxivId,
			URL:      f.URL,
			Score:    &score,
		})
	}
	return ranked, nil
}

// PaperLoader ingests a single paper into page-level documents.
type PaperLoader interface {
	Ingest(ctx context.Context, p arxiv.Paper) ([]store.PaperDocument, error)
}

var _ PaperLoader = (*paper.Ingester)(nil)

// LoadPipeline ingests the papers a user selected after a search.
type LoadPipeline struct {
	loader PaperLoader
	logger *log.Logger
}

func NewLoadPipeline(loader PaperLoader, logger *log.Logger) *LoadPipeline {
	return &LoadPipeline{
		loader: loader,
		logger: logger,
	}
}

// Run downloads and extracts each selected paper. Individual failures are
// tolerated; loading nothing at all is an error.
func (p *LoadPipeline) Run(ctx context.Context, papers []arxiv.Paper, observer pipeline.StepObserver) LoadOutcome {
	rec := pipeline.NewRecorder(observer)
	rec.Start(pipeline.StepLoading)

	var documents []store.PaperDocument
	var loadedTitles []string

	for _, candidate := range papers {
		docs, err := p.loader.Ingest(ctx, candidate)
		if err != nil {
			p.logger.Printf("[WARN] Failed to load %s: %v", candidate.ArxivId, err)
			continue
		}
		documents = append(documents, docs...)
		loadedTitles = append(loadedTitles, candidate.Title)
	}

	if len(documents) == 0 {
		rec.Fail("failed to load any papers")
		return LoadOutcome{
			Steps: rec.Steps(),
			Err:   fmt.Errorf("failed to load any papers"),
		}
	}

	rec.Complete(fmt.Sprintf("%d documents loaded from %d papers", len(documents), len(loadedTitles)))
	return LoadOutcome{
		Steps:        rec.Steps(),
		Documents:    documents,
		LoadedPapers: loadedTitles,
	}
}
