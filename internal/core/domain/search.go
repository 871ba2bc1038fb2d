package domain

// ScoredChunk is a retrieval hit: a chunk together with its cosine
// similarity to the query embedding. Higher scores are more similar.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
