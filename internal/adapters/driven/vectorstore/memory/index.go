// Package memory provides an in-process vector index using brute-force
// cosine similarity. One index is built per ingested source; the answer
// path merges all persisted indices into a single memory index.
package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores chunks and their L2-normalised embeddings in insertion
// order. It is append-only: Merge and Add only grow the index.
type Index struct {
	chunks  []domain.Chunk
	vectors [][]float32
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Add inserts chunks with their embeddings.
// Embeddings are normalised on insert so search reduces to a dot product.
func (ix *Index) Add(chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s: %w: missing embedding", c.ID, domain.ErrInvalidInput)
		}
		if len(ix.vectors) > 0 && len(c.Embedding) != len(ix.vectors[0]) {
			return fmt.Errorf("chunk %s: %w: dimension %d, index has %d",
				c.ID, domain.ErrInvalidInput, len(c.Embedding), len(ix.vectors[0]))
		}
		ix.chunks = append(ix.chunks, c)
		ix.vectors = append(ix.vectors, normalise(c.Embedding))
	}
	return nil
}

// Search finds the k chunks closest to the query vector under cosine
// similarity, ordered by decreasing score. Ties between equal scores
// break by insertion order.
func (ix *Index) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if len(ix.vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if k <= 0 {
		k = 5
	}

	q := normalise(query)
	scores := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = dot(v, q)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps insertion order among equal scores, so results
	// are deterministic for a fixed merge order.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]domain.ScoredChunk, 0, k)
	for _, idx := range order[:k] {
		results = append(results, domain.ScoredChunk{Chunk: ix.chunks[idx], Score: scores[idx]})
	}
	return results, nil
}

// Merge unions another index's vectors and chunks into this one.
func (ix *Index) Merge(other driven.VectorIndex) error {
	o, ok := other.(*Index)
	if !ok {
		return fmt.Errorf("%w: cannot merge %T into memory index", domain.ErrInvalidInput, other)
	}
	if len(ix.vectors) > 0 && len(o.vectors) > 0 && len(ix.vectors[0]) != len(o.vectors[0]) {
		return fmt.Errorf("%w: dimension mismatch %d vs %d",
			domain.ErrInvalidInput, len(ix.vectors[0]), len(o.vectors[0]))
	}
	ix.chunks = append(ix.chunks, o.chunks...)
	ix.vectors = append(ix.vectors, o.vectors...)
	return nil
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Chunks returns the stored chunks in insertion order.
func (ix *Index) Chunks() []domain.Chunk {
	return ix.chunks
}

// Vectors returns the stored (normalised) vectors in insertion order.
// Used by the persistence layer.
func (ix *Index) Vectors() [][]float32 {
	return ix.vectors
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return append([]float32(nil), v...)
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
