package domain

import "time"

// SourceKind identifies how a document entered the corpus.
type SourceKind string

// Known source kinds.
const (
	SourcePDF     SourceKind = "pdf"
	SourceImage   SourceKind = "image"
	SourceYouTube SourceKind = "youtube"
)

// Document represents a single ingested source after extraction.
// It is the canonical representation before chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path or video URL).
	URI string

	// Title is the human-readable title derived from the source name.
	Title string

	// Source is the normalised source stem used to namespace the
	// per-source vector index (spaces replaced, lowercased).
	Source string

	// Kind records how the document entered the corpus.
	Kind SourceKind

	// Content is the full extracted text before chunking.
	Content string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a bounded contiguous slice of extracted text tagged with its
// source. Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the normalised source stem of the originating document.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// Table is a rectangular block of tabular data recovered from a page or
// an image region. The first row is the header when Header is true.
type Table struct {
	Rows   [][]string
	Header bool
}

// Empty reports whether the table holds no cells.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
