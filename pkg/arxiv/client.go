package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultQueryURL = "http://export.arxiv.org/api/query"
	defaultPDFURL   = "https://arxiv.org/pdf"
)

// Paper is one search hit from the arXiv API, in source order.
type Paper struct {
	Title    string
	Abstract string
	Authors  string // up to first 3, comma-joined
	ArxivId  string
	URL      string
}

// Client talks to the arXiv export API.
type Client struct {
	QueryBaseURL string
	PDFBaseURL   string
	HTTPClient   *http.Client
}

func NewClient() *Client {
	return &Client{
		QueryBaseURL: defaultQueryURL,
		PDFBaseURL:   defaultPDFURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// --- Atom feed structures (Internal to this package) ---

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Id      string       `xml:"id"`
	Title   string       `xml:"title"`
	Summary string       `xml:"summary"`
	Authors []atomAuthor `xml:"author"`
	Links   []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Search queries arXiv for up to maxResults papers, ordered by the API's
// own relevance ranking, descending. An empty result set returns an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	fullURL := c.QueryBaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, Paper{
			Title:    collapseWhitespace(entry.Title),
			Abstract: collapseWhitespace(entry.Summary),
			Authors:  joinAuthors(entry.Authors, 3),
			ArxivId:  idFromEntry(entry.Id),
			URL:      linkFromEntry(entry),
		})
	}

	return papers, nil
}

// DownloadPDF fetches the full paper PDF for a given arXiv id.
func (c *Client) DownloadPDF(ctx context.Context, arxivId string) ([]byte, error) {
	pdfURL := fmt.Sprintf("%s/%s", c.PDFBaseURL, arxivId)

	req, err := http.NewRequestWithContext(ctx, "GET", pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf download returned status %d for %s", resp.StatusCode, arxivId)
	}

	return io.ReadAll(resp.Body)
}

// idFromEntry extracts the bare arXiv id from an Atom entry id like
// http://arxiv.org/abs/2401.12345v1
func idFromEntry(entryId string) string {
	if idx := strings.LastIndex(entryId, "/abs/"); idx >= 0 {
		return entryId[idx+len("/abs/"):]
	}
	return entryId
}

func linkFromEntry(entry atomEntry) string {
	for _, l := range entry.Links {
		if l.Rel == "alternate" || (l.Rel == "" && l.Type == "text/html") {
			return l.Href
		}
	}
	if len(entry.Links) > 0 {
		return entry.Links[0].Href
	}
	return entry.Id
}

func joinAuthors(authors []atomAuthor, max int) string {
	names := make([]string, 0, max)
	for i, a := range authors {
		if i >= max {
			break
		}
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
