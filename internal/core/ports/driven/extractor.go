package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// Extractor turns a raw source (PDF, image, video transcript) into plain
// text plus any tabular data recovered along the way.
//
// Failure policy: a missing or corrupt source yields empty text and no
// tables with a nil error; only I/O failures while writing the extractor's
// own artifacts (table CSVs, transcript files) propagate.
type Extractor interface {
	// Extract reads the source at path (or URL for video extractors) and
	// returns its text content and detected tables.
	Extract(ctx context.Context, source string) (string, []domain.Table, error)
}
