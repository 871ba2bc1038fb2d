// Package postprocessors turns extracted document content into chunks
// ready for embedding.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Pipeline chains PostProcessors and runs them in order. The first
// processor receives nil chunks and creates them; later processors
// receive and may modify them.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline that runs the given processors in order.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process runs the document through all processors, then normalises the
// result: whitespace-only chunks are dropped (OCR and transcript text
// produce them routinely) and source metadata is backfilled from the
// document.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk
	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	kept := chunks[:0]
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		if chunk.DocumentID == "" {
			chunk.DocumentID = doc.ID
		}
		if chunk.Source == "" {
			chunk.Source = doc.Source
		}
		chunk.Position = len(kept)
		kept = append(kept, chunk)
	}
	logger.Debug("Pipeline produced %d chunks for %s", len(kept), doc.Source)

	return kept, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
