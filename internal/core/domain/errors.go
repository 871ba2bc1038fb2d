package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Loading a vector index from a path with no persisted index returns this.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an uploaded file type no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates a source could not be read or parsed.
	// Caught per file; the remaining batch continues.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding provider is unreachable.
	// Index building fails until the provider responds.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmptyIndex indicates a similarity query against an index holding
	// zero vectors.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrNoCorpus indicates no persisted indices exist yet.
	// Question answering is disabled until at least one source is ingested.
	ErrNoCorpus = errors.New("no ingested corpus")

	// ErrMissingCredential indicates the inference API credential is absent.
	// This is fatal at session construction.
	ErrMissingCredential = errors.New("missing API credential")
)
