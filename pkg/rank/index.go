package rank

import (
	"math"
	"sort"
)

// Match pairs a candidate index with its vector distance to the query.
// Lower distance means more similar.
type Match struct {
	Index    int
	Distance float64
}

// Index is an ephemeral in-memory similarity index. It lives for a single
// pipeline invocation and is discarded afterwards.
type Index struct {
	vectors [][]float32
}

func NewIndex() *Index {
	return &Index{}
}

// Add appends a vector; its position is the candidate index.
func (idx *Index) Add(vector []float32) {
	idx.vectors = append(idx.vectors, vector)
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Search returns the topK nearest neighbors by cosine distance,
// ordered ascending (most similar first).
func (idx *Index) Search(query []float32, topK int) []Match {
	matches := make([]Match, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		matches = append(matches, Match{
			Index:    i,
			Distance: CosineDistance(query, vec),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}

// CosineDistance computes 1 - cosine similarity. Zero-magnitude vectors
// are treated as maximally distant.
func CosineDistance(a, b []float32) float64 {
	var dot, magA, magB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(magA)*math.Sqrt(magB))
}
