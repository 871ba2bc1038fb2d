package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// seedIndex persists a small index for one source under indicesDir.
func seedIndex(t *testing.T, store *mockIndexStore, indicesDir, source string, chunks []domain.Chunk) {
	t.Helper()

	index := memory.New()
	require.NoError(t, index.Add(chunks))

	dir := filepath.Join(indicesDir, indexDirPrefix+source)
	require.NoError(t, os.MkdirAll(dir, 0700))
	store.indices[dir] = index
}

func newTestAnswerer(t *testing.T, llm *mockLLM, visualizer *mockVisualizer) (*Answerer, *mockEmbedder) {
	t.Helper()

	indicesDir := filepath.Join(t.TempDir(), "indices")
	store := newMockIndexStore()
	seedIndex(t, store, indicesDir, "report_a", []domain.Chunk{
		{ID: "a1", Source: "report_a", Content: "revenue grew twelve percent", Embedding: []float32{1, 0, 0}},
	})
	seedIndex(t, store, indicesDir, "report_b", []domain.Chunk{
		{ID: "b1", Source: "report_b", Content: "margins were stable", Embedding: []float32{0, 1, 0}},
	})

	embedder := &mockEmbedder{embedding: []float32{1, 0, 0}}
	a, err := NewAnswerer(context.Background(), store, indicesDir, embedder, llm, visualizer)
	require.NoError(t, err)
	return a, embedder
}

func TestNewAnswerer_NoCorpus(t *testing.T) {
	indicesDir := filepath.Join(t.TempDir(), "indices")
	require.NoError(t, os.MkdirAll(indicesDir, 0700))

	_, err := NewAnswerer(context.Background(), newMockIndexStore(), indicesDir,
		&mockEmbedder{}, &mockLLM{}, &mockVisualizer{})
	assert.ErrorIs(t, err, domain.ErrNoCorpus)
}

func TestNewAnswerer_MissingIndicesDir(t *testing.T) {
	_, err := NewAnswerer(context.Background(), newMockIndexStore(),
		filepath.Join(t.TempDir(), "nope"), &mockEmbedder{}, &mockLLM{}, &mockVisualizer{})
	assert.ErrorIs(t, err, domain.ErrNoCorpus)
}

func TestNewAnswerer_MergesAllIndices(t *testing.T) {
	a, _ := newTestAnswerer(t, &mockLLM{}, &mockVisualizer{})
	assert.Equal(t, 2, a.CorpusSize())
}

func TestAnswer_Retrieval(t *testing.T) {
	llm := &mockLLM{completion: "Revenue grew twelve percent."}
	a, _ := newTestAnswerer(t, llm, &mockVisualizer{})

	answer, err := a.Answer(context.Background(), "how did revenue develop?")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew twelve percent.", answer)

	// Retrieved context is part of the prompt, question included.
	assert.Contains(t, llm.lastPrompt, "revenue grew twelve percent")
	assert.Contains(t, llm.lastPrompt, "how did revenue develop?")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(llm.lastPrompt), answerMarker))

	assert.Equal(t, answerTemperature, llm.lastOpts.Temperature)
	assert.Equal(t, answerMaxTokens, llm.lastOpts.MaxTokens)
}

func TestAnswer_ExtractsAfterLastMarker(t *testing.T) {
	llm := &mockLLM{completion: "Question: x\nAnswer: draft\nAnswer: Margins were stable."}
	a, _ := newTestAnswerer(t, llm, &mockVisualizer{})

	answer, err := a.Answer(context.Background(), "what about margins?")
	require.NoError(t, err)
	assert.Equal(t, "Margins were stable.", answer)
}

func TestAnswer_CompletionFailureAbsorbed(t *testing.T) {
	llm := &mockLLM{chatErr: assert.AnError}
	a, _ := newTestAnswerer(t, llm, &mockVisualizer{})

	answer, err := a.Answer(context.Background(), "how did revenue develop?")
	require.NoError(t, err)
	assert.Contains(t, answer, "how did revenue develop?")
	assert.Contains(t, answer, assert.AnError.Error())
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	indicesDir := filepath.Join(t.TempDir(), "indices")
	store := newMockIndexStore()
	seedIndex(t, store, indicesDir, "report_a", []domain.Chunk{
		{ID: "a1", Content: "text", Embedding: []float32{1, 0, 0}},
	})

	embedder := &mockEmbedder{embedErr: assert.AnError}
	a, err := NewAnswerer(context.Background(), store, indicesDir, embedder, &mockLLM{}, &mockVisualizer{})
	require.NoError(t, err)

	_, err = a.Answer(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	a, _ := newTestAnswerer(t, &mockLLM{}, &mockVisualizer{})

	_, err := a.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_RoutesChartIntents(t *testing.T) {
	cases := map[string]string{
		"Please plot the VEHICLES SOLD PER YEAR":                 "sales",
		"show the stock price against the cac40 index":           "stock",
		"what is the correlation between sales and stock price?": "correlation",
	}

	for question, want := range cases {
		visualizer := &mockVisualizer{}
		a, embedder := newTestAnswerer(t, &mockLLM{completion: "ignored"}, visualizer)

		answer, err := a.Answer(context.Background(), question)
		require.NoError(t, err, question)
		assert.Equal(t, []string{want}, visualizer.calls, question)
		assert.Contains(t, answer, ".png", question)

		// Chart intents never touch retrieval.
		assert.Equal(t, 0, embedder.embedCalls, question)
	}
}

func TestAnswer_RoutingFallsBackToRetrieval(t *testing.T) {
	visualizer := &mockVisualizer{}
	llm := &mockLLM{completion: "Some answer."}
	a, embedder := newTestAnswerer(t, llm, visualizer)

	// Mentions stock but not cac40: no route matches.
	answer, err := a.Answer(context.Background(), "why did the stock price move?")
	require.NoError(t, err)
	assert.Equal(t, "Some answer.", answer)
	assert.Empty(t, visualizer.calls)
	assert.Equal(t, 1, embedder.embedCalls)
}
