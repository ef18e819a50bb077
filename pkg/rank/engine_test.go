package rank

import (
	"context"
	"io"
	"log"
	"math"
	"testing"

	"paper-brain-be/pkg/embedding"
)

// fakeProvider returns canned unit vectors per text
type fakeProvider struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float32{0, 0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

type memoryCache struct {
	store map[string][]float32
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]float32, bool) {
	vec, ok := m.store[key]
	return vec, ok
}

func (m *memoryCache) Put(ctx context.Context, key string, vector []float32) error {
	m.store[key] = vector
	return nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankBySimilarityOrdersByDistance(t *testing.T) {
	provider := &fakeProvider{vectors: map[string][]float32{
		"query":  {1, 0, 0},
		"near":   {0.9, 0.1, 0},
		"medium": {0.5, 0.5, 0},
		"far":    {0, 1, 0},
	}}
	engine := NewEngine(provider, nil, discardLogger())

	matches, err := engine.RankBySimilarity(context.Background(), "query", []string{"far", "near", "medium"}, nil, 3)
	if err != nil {
		t.Fatalf("RankBySimilarity returned error: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	// near (index 1) then medium (index 2) then far (index 0)
	wantOrder := []int{1, 2, 0}
	for i, want := range wantOrder {
		if matches[i].Index != want {
			t.Errorf("match %d: index = %d, want %d", i, matches[i].Index, want)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Errorf("distances not ascending at %d", i)
		}
	}
}

func TestRankBySimilarityTopKCapped(t *testing.T) {
	provider := &fakeProvider{vectors: map[string][]float32{}}
	engine := NewEngine(provider, nil, discardLogger())

	matches, err := engine.RankBySimilarity(context.Background(), "q", []string{"a", "b"}, nil, 10)
	if err != nil {
		t.Fatalf("RankBySimilarity returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("topK should cap at candidate count, got %d", len(matches))
	}
}

func TestRankBySimilarityUsesCache(t *testing.T) {
	provider := &fakeProvider{vectors: map[string][]float32{
		"q":   {1, 0, 0},
		"doc": {0.8, 0.2, 0},
	}}
	cache := &memoryCache{store: map[string][]float32{}}
	engine := NewEngine(provider, cache, discardLogger())

	_, err := engine.RankBySimilarity(context.Background(), "q", []string{"doc"}, []string{"id-1"}, 1)
	if err != nil {
		t.Fatalf("first rank failed: %v", err)
	}
	firstCalls := provider.calls // query + doc

	_, err = engine.RankBySimilarity(context.Background(), "q", []string{"doc"}, []string{"id-1"}, 1)
	if err != nil {
		t.Fatalf("second rank failed: %v", err)
	}

	// Second run should only embed the query; the doc comes from cache.
	if provider.calls != firstCalls+1 {
		t.Errorf("expected 1 extra provider call, got %d", provider.calls-firstCalls)
	}
	if _, ok := cache.store["id-1"]; !ok {
		t.Error("embedding was not written to the cache")
	}
}
