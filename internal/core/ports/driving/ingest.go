package driving

import "context"

// IngestService ingests sources into the corpus: extraction, chunking,
// embedding, and per-source index persistence. Re-ingesting a source whose
// index already exists is a no-op.
type IngestService interface {
	// IngestPDF ingests a PDF file from path.
	IngestPDF(ctx context.Context, path string) error

	// IngestImage ingests an image file from path via OCR.
	IngestImage(ctx context.Context, path string) error

	// IngestYouTube downloads, transcribes and ingests a video by URL.
	IngestYouTube(ctx context.Context, url string) error

	// IngestDir ingests every supported file in dir. Per-file failures are
	// logged and the remaining batch continues.
	IngestDir(ctx context.Context, dir string) error
}
