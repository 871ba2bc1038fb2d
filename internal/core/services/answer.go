package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.AnswerService = (*Answerer)(nil)

// Retrieval and generation defaults.
const (
	defaultTopK        = 5
	answerTemperature  = 0.6
	answerMaxTokens    = 500
	indexDirPrefix     = "index_faiss_"
	answerMarker       = "Answer:"
	answerPromptFormat = `You are a financial analysis assistant. Use the context below to answer the question. If the context does not contain the answer, say that you do not know.

Context:
%s

Question: %s

Answer:`
)

// route pairs an intent predicate with its handler. Routes are evaluated
// in declaration order before retrieval; the first match wins.
type route struct {
	name   string
	match  func(question string) bool
	handle func(ctx context.Context) (string, error)
}

// Answerer answers questions over the merged corpus using retrieval
// plus LLM completion, with fixed-intent routing to chart generation.
type Answerer struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	routes   []route
	topK     int
}

// NewAnswerer loads every persisted index under indicesDir and merges
// them into one queryable corpus. Returns domain.ErrNoCorpus when no
// indices exist yet.
func NewAnswerer(
	ctx context.Context,
	store driven.IndexStore,
	indicesDir string,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	visualizer driving.VisualizeService,
) (*Answerer, error) {
	index, err := loadCorpus(ctx, store, indicesDir)
	if err != nil {
		return nil, err
	}

	a := &Answerer{
		index:    index,
		embedder: embedder,
		llm:      llm,
		topK:     defaultTopK,
	}
	a.routes = []route{
		{
			name:  "sales-per-year",
			match: containsAll("vehicles sold per year"),
			handle: func(ctx context.Context) (string, error) {
				path, err := visualizer.SalesPerYear(ctx, "")
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Saved the vehicles sold per year chart to %s", path), nil
			},
		},
		{
			name:  "stock-vs-index",
			match: containsAll("stock price", "cac40"),
			handle: func(ctx context.Context) (string, error) {
				path, err := visualizer.StockVsIndex(ctx, "")
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Saved the stock price vs CAC40 chart to %s", path), nil
			},
		},
		{
			name:  "sales-stock-correlation",
			match: containsAll("correlation", "sales", "stock"),
			handle: func(ctx context.Context) (string, error) {
				path, err := visualizer.SalesStockCorrelation(ctx, "")
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Saved the sales vs stock correlation chart to %s", path), nil
			},
		},
	}
	return a, nil
}

// Answer returns the assistant's reply for a question. Chart intents are
// routed before retrieval; everything else goes through embedding search
// and LLM completion. Completion failures are absorbed into the reply so
// the session stays alive.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	for _, r := range a.routes {
		if r.match(question) {
			logger.Debug("Routing question to %s", r.name)
			return r.handle(ctx)
		}
	}

	embedding, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := a.index.Search(embedding, a.topK)
	if err != nil {
		return "", fmt.Errorf("searching corpus: %w", err)
	}

	contexts := make([]string, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Chunk.Content
	}
	prompt := fmt.Sprintf(answerPromptFormat, strings.Join(contexts, "\n\n"), question)

	completion, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "user", Content: prompt},
	}, driven.ChatOptions{
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		logger.Warn("Completion failed: %v", err)
		return fmt.Sprintf("Could not answer %q: %v", question, err), nil
	}

	return extractAnswer(completion), nil
}

// CorpusSize returns the number of chunks in the merged corpus.
func (a *Answerer) CorpusSize() int {
	return a.index.Len()
}

// loadCorpus loads and merges all persisted indices in sorted name order.
func loadCorpus(ctx context.Context, store driven.IndexStore, indicesDir string) (driven.VectorIndex, error) {
	entries, err := os.ReadDir(indicesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoCorpus
		}
		return nil, fmt.Errorf("reading %s: %w", indicesDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), indexDirPrefix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, domain.ErrNoCorpus
	}
	sort.Strings(names)

	var merged driven.VectorIndex
	for _, name := range names {
		index, err := store.Load(ctx, filepath.Join(indicesDir, name))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		if merged == nil {
			merged = index
			continue
		}
		if err := merged.Merge(index); err != nil {
			return nil, fmt.Errorf("merging %s: %w", name, err)
		}
	}

	logger.Info("Loaded corpus: %d indices, %d chunks", len(names), merged.Len())
	return merged, nil
}

// containsAll builds a case-insensitive substring predicate over all
// needles.
func containsAll(needles ...string) func(string) bool {
	return func(question string) bool {
		q := strings.ToLower(question)
		for _, needle := range needles {
			if !strings.Contains(q, needle) {
				return false
			}
		}
		return true
	}
}

// extractAnswer returns the text after the last "Answer:" marker when
// present, otherwise the full trimmed completion. Models that echo the
// prompt repeat the marker before the actual answer.
func extractAnswer(completion string) string {
	if idx := strings.LastIndex(completion, answerMarker); idx >= 0 {
		return strings.TrimSpace(completion[idx+len(answerMarker):])
	}
	return strings.TrimSpace(completion)
}
