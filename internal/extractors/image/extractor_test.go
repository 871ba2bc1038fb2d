package image

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

func TestCleanText(t *testing.T) {
	t.Run("collapses space runs", func(t *testing.T) {
		assert.Equal(t, "a b c", CleanText("a    b\t\tc"))
	})

	t.Run("collapses blank line runs", func(t *testing.T) {
		assert.Equal(t, "first\nsecond", CleanText("first\n\n\n\nsecond"))
	})

	t.Run("strips empty lines and edge whitespace", func(t *testing.T) {
		assert.Equal(t, "one\ntwo", CleanText("  one  \n   \n  two  \n"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", CleanText(""))
		assert.Equal(t, "", CleanText("   \n \t \n"))
	})
}

func word(text string) *visionpb.Word {
	symbols := make([]*visionpb.Symbol, 0, len(text))
	for _, r := range text {
		symbols = append(symbols, &visionpb.Symbol{Text: string(r)})
	}
	return &visionpb.Word{Symbols: symbols}
}

func stubResponse(fullText string, blocks ...*visionpb.Block) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{
				FullTextAnnotation: &visionpb.TextAnnotation{
					Text:  fullText,
					Pages: []*visionpb.Page{{Blocks: blocks}},
				},
			},
		},
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "Results Chart.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("fake png bytes"), 0600))

	block := &visionpb.Block{
		Paragraphs: []*visionpb.Paragraph{
			{Words: []*visionpb.Word{word("2023"), word("52.4")}},
			{Words: []*visionpb.Word{word("2024"), word("56.2")}},
		},
	}
	annotate := func(_ context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		require.Len(t, req.Requests, 1)
		assert.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, req.Requests[0].Features[0].Type)
		return stubResponse("Revenue   by year\n\n\n2023  52.4\n2024  56.2\n", block), nil
	}

	textDir := filepath.Join(dir, "text_from_image")
	tablesDir := filepath.Join(dir, "tables")
	e := New(annotate, textDir, tablesDir)

	text, tables, err := e.Extract(context.Background(), imgPath)
	require.NoError(t, err)

	assert.Equal(t, "Revenue by year\n2023 52.4\n2024 56.2", text)

	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"2023", "52.4"}, {"2024", "56.2"}}, tables[0].Rows)

	// Cleaned text artifact saved as txt_<stem>.txt.
	saved, err := os.ReadFile(filepath.Join(textDir, "txt_results_chart.txt"))
	require.NoError(t, err)
	assert.Equal(t, text, string(saved))

	// Block fragment saved as CSV.
	csvBytes, err := os.ReadFile(filepath.Join(tablesDir, "results_chart_table_1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2023,52.4\n2024,56.2\n", string(csvBytes))
}

func TestExtract_MissingFile(t *testing.T) {
	annotate := func(_ context.Context, _ *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		t.Fatal("annotate should not be called for a missing file")
		return nil, nil
	}
	e := New(annotate, "", "")

	text, tables, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, tables)
}

func TestExtract_NoTextDetected(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "blank.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("fake"), 0600))

	annotate := func(_ context.Context, _ *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		}, nil
	}
	e := New(annotate, "", "")

	text, tables, err := e.Extract(context.Background(), imgPath)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, tables)
}

func TestExtract_APIError(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("fake"), 0600))

	annotate := func(_ context.Context, _ *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return nil, assert.AnError
	}
	e := New(annotate, "", "")

	_, _, err := e.Extract(context.Background(), imgPath)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
