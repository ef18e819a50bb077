package rag

import (
	"context"
	"fmt"
	"strings"

	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/rank"
	"paper-brain-be/pkg/store"
)

const defaultChunkCount = 5

// Answerer answers questions over a set of loaded paper pages. Retrieval
// narrows the pages down to the most relevant chunks, generation produces a
// grounded answer with inline citations.
type Answerer struct {
	llmProvider llm.LLMProvider
	ranker      *rank.Engine
	chunkCount  int
}

// Result carries the generated answer plus how many chunks backed it.
type Result struct {
	Answer          string
	ChunksRetrieved int
}

func NewAnswerer(llmProvider llm.LLMProvider, ranker *rank.Engine) *Answerer {
	return &Answerer{
		llmProvider: llmProvider,
		ranker:      ranker,
		chunkCount:  defaultChunkCount,
	}
}

// AnswerWithDocuments retrieves the most relevant pages for the query and
// asks the model for an answer citing them. Provider quota failures
// propagate as *llm.QuotaError for the caller to classify.
func (a *Answerer) AnswerWithDocuments(ctx context.Context, docs []store.PaperDocument, query string) (*Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to answer from")
	}

	chunks, err := a.retrieve(ctx, docs, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	prompt := buildAnswerPrompt(chunks, query)

	answer, err := a.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:          strings.TrimSpace(answer),
		ChunksRetrieved: len(chunks),
	}, nil
}

func (a *Answerer) retrieve(ctx context.Context, docs []store.PaperDocument, query string) ([]store.PaperDocument, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	matches, err := a.ranker.RankBySimilarity(ctx, query, texts, nil, a.chunkCount)
	if err != nil {
		return nil, err
	}

	chunks := make([]store.PaperDocument, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, docs[m.Index])
	}
	return chunks, nil
}

func buildAnswerPrompt(chunks []store.PaperDocument, query string) string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	for _, c := range chunks {
		fmt.Fprintf(&prompt, "[%s, Page %d]\n%s\n\n", c.Title, c.Page, c.Content)
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a research assistant answering questions about the papers above.\n")
	prompt.WriteString("Answer the user's question using only the reference material.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material provided\n")
	prompt.WriteString("2. Cite every claim with the source marker exactly as given, e.g. [Paper Title, Page 3]\n")
	prompt.WriteString("3. If the material does not contain the answer, say so honestly\n")
	prompt.WriteString("4. Write in plain prose without markdown formatting\n")
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_question>")

	return prompt.String()
}
