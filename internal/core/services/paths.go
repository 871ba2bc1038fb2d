package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxSourceName bounds copied source filenames so index directory names
// stay within filesystem limits.
const maxSourceName = 70

// Paths resolves the on-disk layout under the data directory. All
// durable state (copied sources, extraction artifacts, indices, reference
// CSVs, rendered charts) lives below DataDir.
type Paths struct {
	DataDir string
}

// NewPaths creates a Paths rooted at dataDir, defaulting to
// ~/.finsight/data when empty.
func NewPaths(dataDir string) Paths {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".finsight", "data")
	}
	return Paths{DataDir: dataDir}
}

// PDFs is the directory holding copied PDF sources.
func (p Paths) PDFs() string { return filepath.Join(p.DataDir, "pdfs") }

// Images is the directory holding copied image sources.
func (p Paths) Images() string { return filepath.Join(p.DataDir, "images") }

// TextFromImage is the directory holding cleaned OCR text artifacts.
func (p Paths) TextFromImage() string { return filepath.Join(p.DataDir, "text_from_image") }

// Tables is the directory holding extracted table CSVs.
func (p Paths) Tables() string { return filepath.Join(p.DataDir, "tables") }

// YouTube is the directory holding video transcripts.
func (p Paths) YouTube() string { return filepath.Join(p.DataDir, "youtube") }

// YouTubeAudio is the directory holding temporary downloaded audio.
func (p Paths) YouTubeAudio() string { return filepath.Join(p.YouTube(), "audio") }

// Indices is the directory holding the per-source vector indices.
func (p Paths) Indices() string { return filepath.Join(p.DataDir, "indices") }

// Financial is the directory holding the reference CSVs.
func (p Paths) Financial() string { return filepath.Join(p.DataDir, "financial") }

// Graphs is the directory holding rendered charts.
func (p Paths) Graphs() string { return filepath.Join(p.DataDir, "graphs") }

// AnnouncementDatesCSV is the announcement dates reference file.
func (p Paths) AnnouncementDatesCSV() string {
	return filepath.Join(p.Financial(), "announcement_result_dates.csv")
}

// VehicleSalesCSV is the vehicle sales reference file.
func (p Paths) VehicleSalesCSV() string {
	return filepath.Join(p.Financial(), "vehicles_sold_per_year.csv")
}

// EnsureDirs creates the full directory layout.
func (p Paths) EnsureDirs() error {
	dirs := []string{
		p.PDFs(),
		p.Images(),
		p.TextFromImage(),
		p.Tables(),
		p.YouTube(),
		p.YouTubeAudio(),
		p.Indices(),
		p.Financial(),
		p.Graphs(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// IndexDirFor returns the vector index directory for a source stem.
func (p Paths) IndexDirFor(source string) string {
	return filepath.Join(p.Indices(), "index_faiss_"+Stem(source))
}

// Stem normalises a source name into an index namespace: base name
// without extension, spaces replaced with underscores, lowercased.
func Stem(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.ReplaceAll(base, " ", "_"))
}

// TruncateName shortens a filename to at most maxSourceName bytes while
// keeping its extension. The cut lands on a rune boundary so the result
// stays valid UTF-8.
func TruncateName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	limit := maxSourceName - len(ext)
	if limit < 1 {
		limit = 1
	}
	if len(base) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	return base + ext
}
