// Package vecindex implements a flat inner-product nearest-neighbor index.
//
// Vectors are L2-normalized at build time and queries are normalized before
// searching, so the inner product equals cosine similarity. The index is
// immutable after Build; replacing it is the caller's concern.
package vecindex

import (
	"fmt"
	"math"
	"sort"
)

// Hit is a single similarity search result.
type Hit struct {
	// Score is the cosine similarity of the stored vector to the query.
	Score float64

	// Position is the index of the stored vector in build order, used to
	// address parallel metadata.
	Position int
}

// Flat is an exhaustive inner-product index over normalized vectors.
// Flat is safe for concurrent readers once built.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build constructs a Flat index from the given vectors.
// All vectors must share the same non-zero dimension. The input slices are
// not retained; normalized copies are stored.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("vecindex: no vectors to index")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vecindex: zero-dimension vector at position 0")
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vecindex: dimension mismatch at position %d: %d vs %d", i, len(v), dim)
		}
		stored[i] = normalize(v)
	}

	return &Flat{dim: dim, vectors: stored}, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int {
	return f.dim
}

// Search returns the k stored vectors most similar to query, ordered by
// descending cosine similarity. If k exceeds the index size, all vectors
// are returned.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("vecindex: query dimension mismatch: %d vs %d", len(query), f.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("vecindex: k must be positive, got %d", k)
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	q := normalize(query)

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Score: dot(q, v), Position: i}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	return hits[:k], nil
}

// normalize returns an L2-normalized copy of v.
// A zero-magnitude vector is returned as an unscaled copy; it scores 0
// against every query.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}

	norm := float32(math.Sqrt(sum))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
