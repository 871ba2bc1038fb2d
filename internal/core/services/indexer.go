package services

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Default embedding request pacing.
const (
	defaultEmbedBatchSize  = 32
	defaultEmbedReqsPerSec = 2
)

// NewIndexFunc creates an empty vector index. Injected so the service
// layer stays independent of the concrete index implementation.
type NewIndexFunc func() driven.VectorIndex

// Indexer embeds chunk texts and builds vector indices from them.
// Embedding requests are batched and rate-limited to stay within
// provider quotas.
type Indexer struct {
	embedder  driven.EmbeddingService
	newIndex  NewIndexFunc
	limiter   *rate.Limiter
	batchSize int
}

// NewIndexer creates an indexer. reqsPerSec <= 0 uses the default pacing.
func NewIndexer(embedder driven.EmbeddingService, newIndex NewIndexFunc, reqsPerSec float64) *Indexer {
	if reqsPerSec <= 0 {
		reqsPerSec = defaultEmbedReqsPerSec
	}
	return &Indexer{
		embedder:  embedder,
		newIndex:  newIndex,
		limiter:   rate.NewLimiter(rate.Limit(reqsPerSec), 1),
		batchSize: defaultEmbedBatchSize,
	}
}

// Build embeds every chunk's text and returns a populated index.
// An unreachable embedding provider fails the whole build.
func (ix *Indexer) Build(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	index := ix.newIndex()
	if len(chunks) == 0 {
		return index, nil
	}

	logger.Debug("Embedding %d chunks with %s", len(chunks), ix.embedder.ModelName())

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := ix.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}

		for i := range batch {
			batch[i].Embedding = vectors[i]
		}
		if err := index.Add(batch); err != nil {
			return nil, fmt.Errorf("adding chunks to index: %w", err)
		}
	}

	logger.Debug("Built index with %d vectors", index.Len())
	return index, nil
}
