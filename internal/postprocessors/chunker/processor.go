// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Boundary candidates tried in order when choosing where to cut a chunk:
// paragraph break, line break, sentence end, word gap.
var separators = []string{"\n\n", "\n", ". ", " "}

// Processor splits document content into overlapping chunks, preferring
// to cut at paragraph and sentence boundaries.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	pieces := p.Split(doc.Content)
	if len(pieces) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    piece,
			Position:   i,
		})
	}

	return chunks, nil
}

// Split cuts text into pieces of at most the configured chunk size, with
// the configured overlap repeated between consecutive pieces. It is a
// pure function of its input; empty input yields nil.
//
// Each cut prefers the last paragraph break inside the window, then the
// last line break, sentence end, or word gap, falling back to a hard cut
// at the size limit. Cut and overlap positions always land on rune
// boundaries, so every piece is valid UTF-8. The next piece starts at
// the overlap distance before the previous cut (snapped back to a rune
// start), so adjacent pieces share at least the overlap region.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= p.chunkSize {
		return []string{text}
	}

	var pieces []string
	start := 0

	for start < len(text) {
		end := start + p.chunkSize
		if end >= len(text) {
			pieces = append(pieces, text[start:])
			break
		}

		end = p.cutPoint(text, start, end)
		pieces = append(pieces, text[start:end])

		next := runeStart(text, end-p.overlap)
		if next <= start {
			// The rune snap must not stall the walk.
			next = end
		}
		start = next
	}

	return pieces
}

// cutPoint picks the best boundary in (start, limit] to end a chunk.
// Boundaries in the first half of the window are ignored so pieces do not
// degenerate when the text has sparse separators.
func (p *Processor) cutPoint(text string, start, limit int) int {
	window := text[start:limit]
	minCut := p.chunkSize / 2
	if minCut <= p.overlap {
		// The next piece starts overlap characters back from the cut;
		// cutting inside the overlap region would stall the walk.
		minCut = p.overlap + 1
	}

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := idx + len(sep)
		if cut >= minCut {
			return start + cut
		}
	}

	return runeStart(text, limit)
}

// runeStart walks pos back to the nearest rune boundary at or before it.
func runeStart(text string, pos int) int {
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}
