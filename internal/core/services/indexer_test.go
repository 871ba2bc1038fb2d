package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

func TestIndexer_Build(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{0, 1, 0}}
	ix := NewIndexer(embedder, newMemIndex, 1000)

	chunks := []domain.Chunk{
		{ID: "c1", Content: "revenue grew"},
		{ID: "c2", Content: "margin shrank"},
	}

	index, err := ix.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())

	for _, c := range index.Chunks() {
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestIndexer_Build_Empty(t *testing.T) {
	ix := NewIndexer(&mockEmbedder{}, newMemIndex, 1000)

	index, err := ix.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestIndexer_Build_ProviderDown(t *testing.T) {
	embedder := &mockEmbedder{embedErr: assert.AnError}
	ix := NewIndexer(embedder, newMemIndex, 1000)

	_, err := ix.Build(context.Background(), []domain.Chunk{{ID: "c1", Content: "text"}})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_Build_Batches(t *testing.T) {
	embedder := &mockEmbedder{}
	ix := NewIndexer(embedder, newMemIndex, 1000)
	ix.batchSize = 2

	chunks := make([]domain.Chunk, 5)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: string(rune('a' + i)), Content: "text"}
	}

	index, err := ix.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 5, index.Len())
	assert.Equal(t, 3, embedder.batchCalls)
}
