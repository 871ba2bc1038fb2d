// Package image extracts text and tabular fragments from images using
// Google Cloud Vision OCR.
package image

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n\s*\n+`)
)

// Extractor runs OCR over image files. The annotate function wraps
// vision.ImageAnnotatorClient.BatchAnnotateImages so tests can stub the
// API call.
type Extractor struct {
	annotate  func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
	textDir   string
	tablesDir string
}

// New creates an image extractor. Cleaned OCR text is saved under
// textDir as txt_<stem>.txt; per-block tabular fragments are saved as
// CSVs under tablesDir. Either dir may be "" to skip that artifact.
func New(
	annotate func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error),
	textDir, tablesDir string,
) *Extractor {
	return &Extractor{annotate: annotate, textDir: textDir, tablesDir: tablesDir}
}

// Extract runs DOCUMENT_TEXT_DETECTION over the image at path. The
// full-image text is cleaned and returned; each text block that splits
// into multi-cell rows is recovered as a tabular fragment.
func (e *Extractor) Extract(ctx context.Context, path string) (string, []domain.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("cannot read image %s: %v", path, err)
		return "", nil, nil
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := e.annotate(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("annotating %s: %w", filepath.Base(path), domain.ErrExtraction)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", nil, fmt.Errorf("annotating %s: %s: %w", filepath.Base(path), r0.Error.Message, domain.ErrExtraction)
	}

	fta := r0.FullTextAnnotation
	if fta == nil || strings.TrimSpace(fta.Text) == "" {
		logger.Warn("no text detected in %s", filepath.Base(path))
		return "", nil, nil
	}

	text := CleanText(fta.Text)

	if e.textDir != "" {
		if err := os.MkdirAll(e.textDir, 0700); err != nil {
			return "", nil, fmt.Errorf("creating text directory: %w", err)
		}
		name := fmt.Sprintf("txt_%s.txt", stem(path))
		if err := os.WriteFile(filepath.Join(e.textDir, name), []byte(text), 0600); err != nil {
			return "", nil, fmt.Errorf("saving OCR text: %w", err)
		}
	}

	tables, err := e.blockTables(path, fta)
	if err != nil {
		return "", nil, err
	}

	logger.Debug("extracted text and %d tables from %s", len(tables), filepath.Base(path))
	return text, tables, nil
}

// blockTables turns each detected text block into a tabular fragment:
// rows split on whitespace, one table per block that yields any cells.
func (e *Extractor) blockTables(path string, fta *visionpb.TextAnnotation) ([]domain.Table, error) {
	var tables []domain.Table
	n := 0

	for _, page := range fta.Pages {
		if page == nil {
			continue
		}
		for _, block := range page.Blocks {
			text := CleanText(blockText(block))
			if text == "" {
				continue
			}

			var rows [][]string
			for _, line := range strings.Split(text, "\n") {
				cells := strings.Fields(line)
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			}
			if len(rows) == 0 {
				continue
			}

			n++
			table := domain.Table{Rows: rows}
			tables = append(tables, table)

			if e.tablesDir != "" {
				name := fmt.Sprintf("%s_table_%d.csv", stem(path), n)
				if err := writeCSV(filepath.Join(e.tablesDir, name), table); err != nil {
					return nil, fmt.Errorf("saving block %d: %w", n, err)
				}
			}
		}
	}
	return tables, nil
}

// blockText reassembles a Vision block: words joined by spaces within a
// paragraph, paragraphs separated by newlines.
func blockText(block *visionpb.Block) string {
	if block == nil {
		return ""
	}
	var paragraphs []string
	for _, para := range block.Paragraphs {
		if para == nil {
			continue
		}
		var words []string
		for _, word := range para.Words {
			if word == nil {
				continue
			}
			var sb strings.Builder
			for _, sym := range word.Symbols {
				if sym != nil {
					sb.WriteString(sym.Text)
				}
			}
			if sb.Len() > 0 {
				words = append(words, sb.String())
			}
		}
		if len(words) > 0 {
			paragraphs = append(paragraphs, strings.Join(words, " "))
		}
	}
	return strings.Join(paragraphs, "\n")
}

// CleanText normalises OCR output: collapses space and tab runs to one
// space, collapses blank-line runs, and strips empty lines.
func CleanText(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankRuns.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// writeCSV persists one tabular fragment as a CSV artifact.
func writeCSV(path string, table domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating tables directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// stem returns the normalised filename stem: spaces to underscores,
// lowercased, extension dropped.
func stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.ReplaceAll(base, " ", "_"))
}
