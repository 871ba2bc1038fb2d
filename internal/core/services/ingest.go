package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/extractors/youtube"
	"github.com/finsight-labs/finsight-cli/internal/logger"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Image extensions accepted by IngestImage and IngestDir.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Ingestor ingests sources into the corpus: copy into the data dir,
// extract, chunk, embed, and persist a per-source vector index.
// Re-ingesting a source whose index already exists is a no-op.
type Ingestor struct {
	paths    Paths
	pdf      driven.Extractor
	image    driven.Extractor
	video    driven.Extractor
	pipeline *postprocessors.Pipeline
	indexer  *Indexer
	store    driven.IndexStore
}

// NewIngestor creates the ingestion service.
func NewIngestor(
	paths Paths,
	pdf, image, video driven.Extractor,
	pipeline *postprocessors.Pipeline,
	indexer *Indexer,
	store driven.IndexStore,
) *Ingestor {
	return &Ingestor{
		paths:    paths,
		pdf:      pdf,
		image:    image,
		video:    video,
		pipeline: pipeline,
		indexer:  indexer,
		store:    store,
	}
}

// IngestPDF ingests a PDF file from path.
func (s *Ingestor) IngestPDF(ctx context.Context, path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return fmt.Errorf("%w: %s is not a PDF", domain.ErrUnsupportedType, path)
	}
	return s.ingestFile(ctx, path, s.paths.PDFs(), s.pdf, domain.SourcePDF)
}

// IngestImage ingests an image file from path via OCR.
func (s *Ingestor) IngestImage(ctx context.Context, path string) error {
	if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("%w: %s is not a supported image", domain.ErrUnsupportedType, path)
	}
	return s.ingestFile(ctx, path, s.paths.Images(), s.image, domain.SourceImage)
}

// IngestYouTube downloads, transcribes and ingests a video by URL.
// The transcript is namespaced by video ID, so re-ingesting the same
// video (under any URL form) is a no-op.
func (s *Ingestor) IngestYouTube(ctx context.Context, url string) error {
	videoID, err := youtube.ParseVideoID(url)
	if err != nil {
		return err
	}

	source := "yb_" + videoID
	indexDir := s.paths.IndexDirFor(source)
	if s.store.Exists(indexDir) {
		logger.Info("Index already exists for %s, skipping", source)
		return nil
	}

	text, _, err := s.video.Extract(ctx, url)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", url, err)
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("No transcript recovered from %s, skipping", url)
		return nil
	}

	return s.index(ctx, domain.Document{
		ID:        uuid.NewString(),
		URI:       url,
		Title:     videoID,
		Source:    Stem(source),
		Kind:      domain.SourceYouTube,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}, indexDir)
}

// IngestDir ingests every supported file in dir. Per-file failures are
// logged and the remaining batch continues.
func (s *Ingestor) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var ingestErr error
		switch ext := strings.ToLower(filepath.Ext(entry.Name())); {
		case ext == ".pdf":
			ingestErr = s.IngestPDF(ctx, path)
		case imageExtensions[ext]:
			ingestErr = s.IngestImage(ctx, path)
		default:
			continue
		}
		if ingestErr != nil {
			logger.Warn("Ingesting %s failed: %v", path, ingestErr)
		}
	}
	return nil
}

// ingestFile copies a file source into destDir, extracts it, and builds
// its index. Missing sources and empty extractions abort the item
// without failing the batch.
func (s *Ingestor) ingestFile(
	ctx context.Context, path, destDir string, extractor driven.Extractor, kind domain.SourceKind,
) error {
	dest, err := s.copyIntoDataDir(path, destDir)
	if err != nil {
		logger.Warn("Cannot copy %s: %v", path, err)
		return nil
	}

	source := Stem(dest)
	indexDir := s.paths.IndexDirFor(source)
	if s.store.Exists(indexDir) {
		logger.Info("Index already exists for %s, skipping", source)
		return nil
	}

	text, tables, err := extractor.Extract(ctx, dest)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", dest, err)
	}
	if len(tables) > 0 {
		logger.Debug("Recovered %d tables from %s", len(tables), source)
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("No text extracted from %s, skipping", dest)
		return nil
	}

	return s.index(ctx, domain.Document{
		ID:        uuid.NewString(),
		URI:       path,
		Title:     filepath.Base(dest),
		Source:    source,
		Kind:      kind,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}, indexDir)
}

// index chunks a document, embeds the chunks, and persists the index.
func (s *Ingestor) index(ctx context.Context, doc domain.Document, indexDir string) error {
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", doc.Source, err)
	}
	if len(chunks) == 0 {
		logger.Warn("No chunks produced for %s, skipping", doc.Source)
		return nil
	}

	index, err := s.indexer.Build(ctx, chunks)
	if err != nil {
		return fmt.Errorf("building index for %s: %w", doc.Source, err)
	}

	if err := s.store.Persist(ctx, indexDir, index); err != nil {
		return fmt.Errorf("persisting index for %s: %w", doc.Source, err)
	}

	logger.Info("Ingested %s: %d chunks", doc.Source, len(chunks))
	return nil
}

// copyIntoDataDir copies path into destDir under a truncated name and
// returns the destination path. A source already inside destDir is used
// in place.
func (s *Ingestor) copyIntoDataDir(path, destDir string) (string, error) {
	if filepath.Dir(path) == destDir {
		return path, nil
	}

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, TruncateName(filepath.Base(path)))

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("copying to %s: %w", dest, err)
	}
	return dest, nil
}
