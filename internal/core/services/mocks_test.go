package services

import (
	"context"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding  []float32
	embedErr   error
	embedCalls int
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector()
	}
	return result, nil
}

func (m *mockEmbedder) vector() []float32 {
	if m.embedding != nil {
		return m.embedding
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbedder) Dimensions() int              { return len(m.vector()) }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	completion string
	chatErr    error
	lastPrompt string
	lastOpts   driven.ChatOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.completion, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if len(messages) > 0 {
		m.lastPrompt = messages[len(messages)-1].Content
	}
	m.lastOpts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.completion, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockIndexStore implements driven.IndexStore in memory.
type mockIndexStore struct {
	indices    map[string]driven.VectorIndex
	persistErr error
	loadErr    error
	persists   int
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{indices: make(map[string]driven.VectorIndex)}
}

func (m *mockIndexStore) Persist(_ context.Context, dir string, index driven.VectorIndex) error {
	if m.persistErr != nil {
		return m.persistErr
	}
	m.persists++
	m.indices[dir] = index
	return nil
}

func (m *mockIndexStore) Load(_ context.Context, dir string) (driven.VectorIndex, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	index, ok := m.indices[dir]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return index, nil
}

func (m *mockIndexStore) Exists(dir string) bool {
	_, ok := m.indices[dir]
	return ok
}

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	text    string
	tables  []domain.Table
	err     error
	sources []string
}

func (m *mockExtractor) Extract(_ context.Context, source string) (string, []domain.Table, error) {
	m.sources = append(m.sources, source)
	if m.err != nil {
		return "", nil, m.err
	}
	return m.text, m.tables, nil
}

// mockMarket implements driven.MarketData for testing.
type mockMarket struct {
	points  map[string][]driven.PricePoint
	err     error
	symbols []string
}

func (m *mockMarket) DailyCloses(_ context.Context, symbol string, _ time.Time) ([]driven.PricePoint, error) {
	m.symbols = append(m.symbols, symbol)
	if m.err != nil {
		return nil, m.err
	}
	return m.points[symbol], nil
}

// renderCall records one chart render invocation.
type renderCall struct {
	kind    string
	title   string
	series  []driven.Series
	xs, ys  []float64
	labels  []string
	outPath string
}

// mockRenderer implements driven.ChartRenderer for testing.
type mockRenderer struct {
	calls []renderCall
	err   error
}

func (m *mockRenderer) Bar(title string, s driven.Series, outPath string) error {
	m.calls = append(m.calls, renderCall{kind: "bar", title: title, series: []driven.Series{s}, outPath: outPath})
	return m.err
}

func (m *mockRenderer) Lines(title string, series []driven.Series, outPath string) error {
	m.calls = append(m.calls, renderCall{kind: "lines", title: title, series: series, outPath: outPath})
	return m.err
}

func (m *mockRenderer) Scatter(title, _, _ string, xs, ys []float64, labels []string, outPath string) error {
	m.calls = append(m.calls, renderCall{kind: "scatter", title: title, xs: xs, ys: ys, labels: labels, outPath: outPath})
	return m.err
}

// mockRefStore implements driven.ReferenceStore in memory.
type mockRefStore struct {
	dates         []domain.AnnouncementDate
	sales         []domain.VehicleSales
	conversations map[string][]domain.Turn
	saveErr       error
}

func newMockRefStore() *mockRefStore {
	return &mockRefStore{conversations: make(map[string][]domain.Turn)}
}

func (m *mockRefStore) SaveAnnouncementDates(_ context.Context, dates []domain.AnnouncementDate) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.dates = dates
	return nil
}

func (m *mockRefStore) ListAnnouncementDates(_ context.Context) ([]domain.AnnouncementDate, error) {
	return m.dates, nil
}

func (m *mockRefStore) SaveVehicleSales(_ context.Context, sales []domain.VehicleSales) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sales = sales
	return nil
}

func (m *mockRefStore) ListVehicleSales(_ context.Context) ([]domain.VehicleSales, error) {
	return m.sales, nil
}

func (m *mockRefStore) SaveConversation(_ context.Context, sessionID string, turns []domain.Turn) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.conversations[sessionID] = turns
	return nil
}

func (m *mockRefStore) ListConversations(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.conversations))
	for id := range m.conversations {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockRefStore) GetConversation(_ context.Context, sessionID string) ([]domain.Turn, error) {
	turns, ok := m.conversations[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

func (m *mockRefStore) Close() error { return nil }

// mockVisualizer implements driving.VisualizeService for testing.
type mockVisualizer struct {
	calls []string
	err   error
}

func (m *mockVisualizer) SalesPerYear(_ context.Context, outPath string) (string, error) {
	m.calls = append(m.calls, "sales")
	return outPath + "/sales.png", m.err
}

func (m *mockVisualizer) StockVsIndex(_ context.Context, outPath string) (string, error) {
	m.calls = append(m.calls, "stock")
	return outPath + "/stock.png", m.err
}

func (m *mockVisualizer) SalesStockCorrelation(_ context.Context, outPath string) (string, error) {
	m.calls = append(m.calls, "correlation")
	return outPath + "/correlation.png", m.err
}

// newMemIndex adapts memory.New to the NewIndexFunc signature.
func newMemIndex() driven.VectorIndex {
	return memory.New()
}
