package paper

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/store"
)

// PDFSource downloads the full text of a paper by its arXiv id.
type PDFSource interface {
	DownloadPDF(ctx context.Context, arxivId string) ([]byte, error)
}

// Ingester turns arXiv papers into page-level documents for retrieval.
type Ingester struct {
	source PDFSource
	logger *log.Logger
}

func NewIngester(source PDFSource, logger *log.Logger) *Ingester {
	return &Ingester{
		source: source,
		logger: logger,
	}
}

// Ingest downloads one paper and extracts its text page by page. Pages that
// are null or yield no text are skipped; a paper with no extractable text at
// all is an error.
func (ing *Ingester) Ingest(ctx context.Context, p arxiv.Paper) ([]store.PaperDocument, error) {
	data, err := ing.source.DownloadPDF(ctx, p.ArxivId)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", p.ArxivId, err)
	}

	docs, err := ing.ExtractPages(data, p.Title, p.ArxivId)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", p.ArxivId, err)
	}

	ing.logger.Printf("[DEBUG] Ingested %s: %d pages with text", p.ArxivId, len(docs))
	return docs, nil
}

// ExtractPages parses raw PDF bytes into per-page documents. Page numbers
// are 1-based and follow the PDF's own page order.
func (ing *Ingester) ExtractPages(data []byte, title, arxivId string) ([]store.PaperDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	totalPages := reader.NumPage()
	docs := make([]store.PaperDocument, 0, totalPages)

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			ing.logger.Printf("[WARN] Null page %d in %s", pageNum, arxivId)
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			ing.logger.Printf("[WARN] Failed to extract page %d of %s: %v", pageNum, arxivId, err)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		docs = append(docs, store.PaperDocument{
			Title:   title,
			ArxivId: arxivId,
			Page:    pageNum,
			Content: text,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no text content extracted from %s", arxivId)
	}

	return docs, nil
}
