package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.12345v1</id>
    <title>Attention Is
  All You Need</title>
    <summary>We propose a new
  architecture based solely on attention.</summary>
    <author><name>Alice Smith</name></author>
    <author><name>Bob Jones</name></author>
    <author><name>Carol White</name></author>
    <author><name>Dan Black</name></author>
    <link href="http://arxiv.org/abs/2401.12345v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2401.12345v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2402.00001v2</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <author><name>Eve Green</name></author>
    <link href="http://arxiv.org/abs/2402.00001v2" rel="alternate" type="text/html"/>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient()
	client.QueryBaseURL = srv.URL
	client.PDFBaseURL = srv.URL
	return client, srv
}

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		if r.URL.Query().Get("sortBy") != "relevance" {
			t.Errorf("expected sortBy=relevance, got %q", r.URL.Query().Get("sortBy"))
		}
		if r.URL.Query().Get("max_results") != "15" {
			t.Errorf("expected max_results=15, got %q", r.URL.Query().Get("max_results"))
		}
		w.Write([]byte(sampleFeed))
	})
	defer srv.Close()

	papers, err := client.Search(context.Background(), "transformer attention", 15)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if gotQuery != "all:transformer attention" {
		t.Errorf("search_query = %q, want %q", gotQuery, "all:transformer attention")
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.Title != "Attention Is All You Need" {
		t.Errorf("title not whitespace-collapsed: %q", first.Title)
	}
	if first.Abstract != "We propose a new architecture based solely on attention." {
		t.Errorf("unexpected abstract: %q", first.Abstract)
	}
	if first.Authors != "Alice Smith, Bob Jones, Carol White" {
		t.Errorf("authors should be first 3 comma-joined, got %q", first.Authors)
	}
	if first.ArxivId != "2401.12345v1" {
		t.Errorf("unexpected arxiv id: %q", first.ArxivId)
	}
	if first.URL != "http://arxiv.org/abs/2401.12345v1" {
		t.Errorf("unexpected url: %q", first.URL)
	}
}

func TestSearchEmptyFeedIsNotAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyFeed))
	})
	defer srv.Close()

	papers, err := client.Search(context.Background(), "gibberish", 15)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("expected no papers, got %d", len(papers))
	}
}

func TestSearchSurfacesTransportFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	_, err := client.Search(context.Background(), "anything", 15)
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestDownloadPDF(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2401.12345v1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte("%PDF-1.5 fake"))
	})
	defer srv.Close()

	data, err := client.DownloadPDF(context.Background(), "2401.12345v1")
	if err != nil {
		t.Fatalf("DownloadPDF returned error: %v", err)
	}
	if string(data) != "%PDF-1.5 fake" {
		t.Errorf("unexpected pdf body: %q", data)
	}
}
