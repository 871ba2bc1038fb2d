package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/core/services"
)

// --- Mock implementations ---

// mockIngest implements driving.IngestService for testing.
type mockIngest struct {
	pdfs   []string
	images []string
	videos []string
	dirs   []string
	err    error
}

func (m *mockIngest) IngestPDF(_ context.Context, path string) error {
	m.pdfs = append(m.pdfs, path)
	return m.err
}

func (m *mockIngest) IngestImage(_ context.Context, path string) error {
	m.images = append(m.images, path)
	return m.err
}

func (m *mockIngest) IngestYouTube(_ context.Context, url string) error {
	m.videos = append(m.videos, url)
	return m.err
}

func (m *mockIngest) IngestDir(_ context.Context, dir string) error {
	m.dirs = append(m.dirs, dir)
	return m.err
}

// mockAnswerer implements driving.AnswerService for testing.
type mockAnswerer struct {
	answer    string
	err       error
	questions []string
}

func (m *mockAnswerer) Answer(_ context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

// mockVisualize implements driving.VisualizeService for testing.
type mockVisualize struct {
	calls []string
	out   string
	err   error
}

func (m *mockVisualize) SalesPerYear(_ context.Context, _ string) (string, error) {
	m.calls = append(m.calls, "sales")
	return m.out, m.err
}

func (m *mockVisualize) StockVsIndex(_ context.Context, _ string) (string, error) {
	m.calls = append(m.calls, "stock")
	return m.out, m.err
}

func (m *mockVisualize) SalesStockCorrelation(_ context.Context, _ string) (string, error) {
	m.calls = append(m.calls, "correlation")
	return m.out, m.err
}

// mockReference implements driven.ReferenceStore for testing.
type mockReference struct {
	dates         []domain.AnnouncementDate
	sales         []domain.VehicleSales
	conversations map[string][]domain.Turn
	ids           []string
}

func (m *mockReference) SaveAnnouncementDates(_ context.Context, dates []domain.AnnouncementDate) error {
	m.dates = dates
	return nil
}

func (m *mockReference) ListAnnouncementDates(_ context.Context) ([]domain.AnnouncementDate, error) {
	return m.dates, nil
}

func (m *mockReference) SaveVehicleSales(_ context.Context, sales []domain.VehicleSales) error {
	m.sales = sales
	return nil
}

func (m *mockReference) ListVehicleSales(_ context.Context) ([]domain.VehicleSales, error) {
	return m.sales, nil
}

func (m *mockReference) SaveConversation(_ context.Context, sessionID string, turns []domain.Turn) error {
	if m.conversations == nil {
		m.conversations = make(map[string][]domain.Turn)
	}
	m.conversations[sessionID] = turns
	return nil
}

func (m *mockReference) ListConversations(_ context.Context) ([]string, error) {
	return m.ids, nil
}

func (m *mockReference) GetConversation(_ context.Context, sessionID string) ([]domain.Turn, error) {
	turns, ok := m.conversations[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

func (m *mockReference) Close() error { return nil }

// configureForTest wires the package-level services with mocks over a
// temp data dir.
func configureForTest(t *testing.T, ingest *mockIngest, answerer *mockAnswerer, visualize *mockVisualize, ref *mockReference) services.Paths {
	t.Helper()

	paths := services.NewPaths(filepath.Join(t.TempDir(), "data"))
	Configure(Services{
		Paths:     paths,
		Ingest:    ingest,
		Visualize: visualize,
		Dates:     services.NewDatesService(paths, nil, ref),
		Finance:   services.NewFinanceService(paths, ref),
		Reference: ref,
		NewAnswerer: func(_ context.Context) (driving.AnswerService, error) {
			if answerer == nil {
				return nil, domain.ErrNoCorpus
			}
			return answerer, nil
		},
		NewSession: func() *services.Session {
			return services.NewSession(ref)
		},
	})
	return paths
}
