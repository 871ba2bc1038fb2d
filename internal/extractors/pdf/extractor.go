// Package pdf extracts text and tables from PDF documents.
package pdf

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// columnSplit separates table cells: two or more consecutive spaces.
var columnSplit = regexp.MustCompile(`\s{2,}`)

// Extractor pulls text and tabular content out of PDF files.
type Extractor struct {
	tablesDir string
}

// New creates a PDF extractor. Detected tables are saved as CSV files
// under tablesDir; pass "" to skip the CSV side effect.
func New(tablesDir string) *Extractor {
	return &Extractor{tablesDir: tablesDir}
}

// Extract reads the PDF at path and returns its text (page texts joined
// with newlines) plus any tables detected in the page layout.
func (e *Extractor) Extract(ctx context.Context, path string) (string, []domain.Table, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		logger.Warn("cannot open PDF %s: %v", path, err)
		return "", nil, nil
	}
	defer f.Close()

	var sb strings.Builder
	var tables []domain.Table

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("cannot read page %d of %s: %v", i, path, err)
			continue
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}

		table := detectTable(text)
		if table.Empty() {
			continue
		}
		tables = append(tables, table)

		if e.tablesDir != "" {
			name := fmt.Sprintf("%s_table_page_%d.csv", stem(path), i)
			if err := writeCSV(filepath.Join(e.tablesDir, name), table); err != nil {
				return "", nil, fmt.Errorf("saving table from page %d: %w", i, err)
			}
		}
	}

	logger.Debug("extracted %d pages and %d tables from %s", numPages, len(tables), filepath.Base(path))
	return sb.String(), tables, nil
}

// detectTable looks for a run of at least two consecutive lines whose
// column split yields two or more cells. The first row of the run is
// taken as the header. Only the first such run per page is reported.
func detectTable(text string) domain.Table {
	var rows [][]string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		cells := columnSplit.Split(line, -1)
		if line != "" && len(cells) >= 2 {
			rows = append(rows, cells)
			continue
		}
		if len(rows) >= 2 {
			break
		}
		rows = nil
	}

	if len(rows) < 2 {
		return domain.Table{}
	}
	return domain.Table{Rows: rows, Header: true}
}

// writeCSV persists one table as a CSV artifact.
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
