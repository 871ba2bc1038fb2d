package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// VectorIndex answers nearest-neighbour queries over embedded chunks.
// Indices are append-only: new sources create new indices rather than
// mutating existing ones.
type VectorIndex interface {
	// Add inserts chunks with their embeddings.
	Add(chunks []domain.Chunk) error

	// Search finds the k chunks whose embeddings are closest to the query
	// vector, ordered by decreasing similarity. Ties between equal scores
	// break by insertion order, which is stable for a fixed merge order.
	// Searching an index holding zero vectors returns domain.ErrEmptyIndex.
	Search(query []float32, k int) ([]domain.ScoredChunk, error)

	// Merge unions another index's vectors and chunks into this one.
	// Set union is commutative: merge order does not affect which chunks
	// a query returns, only the tie-break among equal scores.
	Merge(other VectorIndex) error

	// Len returns the number of stored vectors.
	Len() int

	// Chunks returns the stored chunks in insertion order.
	Chunks() []domain.Chunk
}

// IndexStore persists vector indices durably, one directory per source.
type IndexStore interface {
	// Persist writes the index under dir, creating it as needed.
	Persist(ctx context.Context, dir string, index VectorIndex) error

	// Load reads a persisted index from dir.
	// Returns domain.ErrNotFound if no index exists there.
	Load(ctx context.Context, dir string) (VectorIndex, error)

	// Exists reports whether a persisted index is present at dir.
	Exists(dir string) bool
}
