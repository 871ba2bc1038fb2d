package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors/chunker"
)

// newTestIngestor wires an ingestor over mocks and a temp data dir.
func newTestIngestor(t *testing.T, pdf, image, video *mockExtractor) (*Ingestor, *mockIndexStore, *mockEmbedder, Paths) {
	t.Helper()

	paths := NewPaths(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, paths.EnsureDirs())

	embedder := &mockEmbedder{}
	store := newMockIndexStore()
	pipeline := postprocessors.NewPipeline(chunker.New())
	indexer := NewIndexer(embedder, newMemIndex, 1000)

	return NewIngestor(paths, pdf, image, video, pipeline, indexer, store), store, embedder, paths
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("raw bytes"), 0600))
	return path
}

func TestIngestor_IngestPDF(t *testing.T) {
	pdf := &mockExtractor{text: "annual results. revenue grew strongly."}
	s, store, embedder, paths := newTestIngestor(t, pdf, &mockExtractor{}, &mockExtractor{})

	path := writeSource(t, "Annual Report 2023.pdf")
	require.NoError(t, s.IngestPDF(context.Background(), path))

	// Source copied into the data dir and extracted from there.
	copied := filepath.Join(paths.PDFs(), "Annual Report 2023.pdf")
	assert.FileExists(t, copied)
	require.Len(t, pdf.sources, 1)
	assert.Equal(t, copied, pdf.sources[0])

	// Index persisted under the normalised stem.
	indexDir := paths.IndexDirFor("annual_report_2023")
	assert.True(t, store.Exists(indexDir))
	assert.Equal(t, 1, embedder.batchCalls)
}

func TestIngestor_IngestPDF_SkipIfExists(t *testing.T) {
	pdf := &mockExtractor{text: "annual results"}
	s, store, embedder, _ := newTestIngestor(t, pdf, &mockExtractor{}, &mockExtractor{})

	path := writeSource(t, "report.pdf")
	require.NoError(t, s.IngestPDF(context.Background(), path))
	require.Equal(t, 1, store.persists)

	// Second ingest is a no-op: no extraction, no embedding calls.
	require.NoError(t, s.IngestPDF(context.Background(), path))
	assert.Equal(t, 1, store.persists)
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Len(t, pdf.sources, 1)
}

func TestIngestor_IngestPDF_WrongExtension(t *testing.T) {
	s, _, _, _ := newTestIngestor(t, &mockExtractor{}, &mockExtractor{}, &mockExtractor{})

	err := s.IngestPDF(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestor_IngestPDF_EmptyExtraction(t *testing.T) {
	pdf := &mockExtractor{text: "   \n"}
	s, store, _, _ := newTestIngestor(t, pdf, &mockExtractor{}, &mockExtractor{})

	path := writeSource(t, "scanned.pdf")
	require.NoError(t, s.IngestPDF(context.Background(), path))
	assert.Equal(t, 0, store.persists)
}

func TestIngestor_IngestPDF_MissingFileAbsorbed(t *testing.T) {
	s, store, _, paths := newTestIngestor(t, &mockExtractor{}, &mockExtractor{}, &mockExtractor{})

	err := s.IngestPDF(context.Background(), filepath.Join(paths.DataDir, "nope.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 0, store.persists)
}

func TestIngestor_IngestImage(t *testing.T) {
	image := &mockExtractor{text: "revenue by year 2023 52.4"}
	s, store, _, paths := newTestIngestor(t, &mockExtractor{}, image, &mockExtractor{})

	path := writeSource(t, "Results Chart.png")
	require.NoError(t, s.IngestImage(context.Background(), path))
	assert.True(t, store.Exists(paths.IndexDirFor("results_chart")))
}

func TestIngestor_IngestImage_WrongExtension(t *testing.T) {
	s, _, _, _ := newTestIngestor(t, &mockExtractor{}, &mockExtractor{}, &mockExtractor{})

	err := s.IngestImage(context.Background(), "chart.gif")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestor_IngestYouTube(t *testing.T) {
	video := &mockExtractor{text: "welcome to the results presentation"}
	s, store, _, paths := newTestIngestor(t, &mockExtractor{}, &mockExtractor{}, video)

	url := "https://youtu.be/dQw4w9WgXcQ"
	require.NoError(t, s.IngestYouTube(context.Background(), url))
	assert.True(t, store.Exists(paths.IndexDirFor("yb_dQw4w9WgXcQ")))

	// Same video under another URL form is a no-op.
	require.NoError(t, s.IngestYouTube(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Len(t, video.sources, 1)
}

func TestIngestor_IngestYouTube_InvalidURL(t *testing.T) {
	s, _, _, _ := newTestIngestor(t, &mockExtractor{}, &mockExtractor{}, &mockExtractor{})

	err := s.IngestYouTube(context.Background(), "https://example.com/clip")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestor_IngestDir(t *testing.T) {
	pdf := &mockExtractor{text: "pdf text body"}
	image := &mockExtractor{text: "image text body"}
	s, store, _, _ := newTestIngestor(t, pdf, image, &mockExtractor{})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	require.NoError(t, s.IngestDir(context.Background(), dir))
	assert.Equal(t, 2, store.persists)
}

func TestIngestor_IngestDir_ContinuesPastFailures(t *testing.T) {
	pdf := &mockExtractor{err: domain.ErrExtraction}
	image := &mockExtractor{text: "image text body"}
	s, store, _, _ := newTestIngestor(t, pdf, image, &mockExtractor{})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.png"), []byte("x"), 0600))

	require.NoError(t, s.IngestDir(context.Background(), dir))
	assert.Equal(t, 1, store.persists)
}
