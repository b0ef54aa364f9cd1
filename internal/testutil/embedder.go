// Package testutil provides deterministic fakes for tests: an embedder with
// stable hash-derived vectors and a pattern-matching mock generator that
// records its calls.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// DefaultEmbedderDim is the vector dimension used by NewEmbedder.
const DefaultEmbedderDim = 64

// Embedder produces deterministic unit vectors derived from the input text.
// Identical texts embed to identical vectors (cosine similarity 1.0);
// unrelated texts land near-orthogonal, far below any routing threshold.
// Safe for concurrent use; stateless.
type Embedder struct {
	dim int
}

// NewEmbedder creates an Embedder with DefaultEmbedderDim dimensions.
func NewEmbedder() *Embedder {
	return &Embedder{dim: DefaultEmbedderDim}
}

// NewEmbedderWithDim creates an Embedder with the given dimension.
func NewEmbedderWithDim(dim int) *Embedder {
	return &Embedder{dim: dim}
}

// Embed returns the deterministic vector for text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

// EmbedBatch returns deterministic vectors for all texts.
func (e *Embedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

// vector expands a sha256 digest of the text into dim pseudo-random
// components in [-1, 1], then L2-normalizes.
func (e *Embedder) vector(text string) []float32 {
	seed := sha256.Sum256([]byte(text))

	v := make([]float32, e.dim)
	var sum float64
	for i := range v {
		block := sha256.Sum256(append(seed[:], byte(i), byte(i>>8)))
		u := binary.BigEndian.Uint64(block[:8])
		x := float64(u)/float64(math.MaxUint64)*2 - 1
		v[i] = float32(x)
		sum += x * x
	}

	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
