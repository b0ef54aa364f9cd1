package knowledge

import (
	"github.com/najihhome/rfidrag/internal/vecindex"
)

// Index is the derived, rebuildable retrieval view over the approved set:
// a flat vector index plus parallel metadata. It is immutable once built;
// Store.Reload builds a fresh Index and swaps it in, so holders of an old
// reference can finish their queries against a consistent view.
type Index struct {
	flat    *vecindex.Flat
	entries []Entry
}

// Search returns the k entries nearest to the query vector, ordered by
// descending cosine similarity.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	raw, err := ix.flat.Search(query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(raw))
	for i, h := range raw {
		hits[i] = Hit{Entry: ix.entries[h.Position], Score: h.Score}
	}
	return hits, nil
}

// Size returns the number of indexed items.
func (ix *Index) Size() int {
	return len(ix.entries)
}

// Dim returns the embedding dimension of the index.
func (ix *Index) Dim() int {
	return ix.flat.Dim()
}
