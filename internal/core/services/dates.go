package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// agendaWindow is how far past an agenda anchor day/month pairs are
// collected, in characters.
const agendaWindow = 300

// agendaPattern anchors the financial announcements agenda section in
// French annual report text.
var agendaPattern = regexp.MustCompile(`(?i)Agenda\s+(\d{4})\s+des annonces financi[eè]res`)

// dayMonthPattern matches a day number followed by a French month name.
var dayMonthPattern = regexp.MustCompile(`(?i)(\d{1,2})\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)`)

// frenchMonths maps lowercased French month names (accented and plain)
// to their two-digit numbers.
var frenchMonths = map[string]string{
	"janvier":   "01",
	"février":   "02",
	"fevrier":   "02",
	"mars":      "03",
	"avril":     "04",
	"mai":       "05",
	"juin":      "06",
	"juillet":   "07",
	"août":      "08",
	"aout":      "08",
	"septembre": "09",
	"octobre":   "10",
	"novembre":  "11",
	"décembre":  "12",
	"decembre":  "12",
}

// ExtractAnnouncementDates finds financial announcement dates in French
// report text. Each agenda anchor contributes the day/month pairs found
// in the window following it, combined with the anchor's year into
// ISO-8601 dates. Text without an anchor yields nil.
func ExtractAnnouncementDates(text string) []string {
	var dates []string
	for _, anchor := range agendaPattern.FindAllStringSubmatchIndex(text, -1) {
		year := text[anchor[2]:anchor[3]]

		// The window is agendaWindow characters, not bytes: accented
		// French text must not shorten it.
		start := anchor[1]
		end := start
		for n := 0; n < agendaWindow && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		window := text[start:end]

		for _, m := range dayMonthPattern.FindAllStringSubmatch(window, -1) {
			day, err := strconv.Atoi(m[1])
			if err != nil || day < 1 || day > 31 {
				continue
			}
			month, ok := frenchMonths[strings.ToLower(m[2])]
			if !ok {
				continue
			}
			dates = append(dates, fmt.Sprintf("%s-%s-%02d", year, month, day))
		}
	}
	return dates
}

// DatesService maintains the announcement dates reference: extraction
// from ingested PDFs, the CSV artifact, and the SQLite mirror.
type DatesService struct {
	paths Paths
	pdf   driven.Extractor
	store driven.ReferenceStore
}

// NewDatesService creates the announcement dates service.
func NewDatesService(paths Paths, pdf driven.Extractor, store driven.ReferenceStore) *DatesService {
	return &DatesService{paths: paths, pdf: pdf, store: store}
}

// List returns the stored announcement dates, refreshing from the
// ingested PDFs when none are stored yet.
func (s *DatesService) List(ctx context.Context) ([]domain.AnnouncementDate, error) {
	dates, err := s.store.ListAnnouncementDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing announcement dates: %w", err)
	}
	if len(dates) > 0 {
		return dates, nil
	}
	return s.Refresh(ctx)
}

// Refresh scans every ingested PDF for announcement dates, deduplicates
// and sorts them, rewrites the reference CSV, and mirrors the result
// into the reference store.
func (s *DatesService) Refresh(ctx context.Context) ([]domain.AnnouncementDate, error) {
	paths, err := filepath.Glob(filepath.Join(s.paths.PDFs(), "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("scanning pdfs: %w", err)
	}
	sort.Strings(paths)

	seen := make(map[string]bool)
	var dates []domain.AnnouncementDate
	for _, path := range paths {
		text, _, err := s.pdf.Extract(ctx, path)
		if err != nil {
			logger.Warn("Cannot extract %s for dates: %v", path, err)
			continue
		}
		for _, date := range ExtractAnnouncementDates(text) {
			if seen[date] {
				continue
			}
			seen[date] = true
			dates = append(dates, domain.AnnouncementDate{Date: date, Source: "pdf"})
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date < dates[j].Date })

	if err := s.writeCSV(dates); err != nil {
		return nil, err
	}
	if err := s.store.SaveAnnouncementDates(ctx, dates); err != nil {
		return nil, fmt.Errorf("saving announcement dates: %w", err)
	}

	logger.Info("Refreshed announcement dates: %d found", len(dates))
	return dates, nil
}

func (s *DatesService) writeCSV(dates []domain.AnnouncementDate) error {
	path := s.paths.AnnouncementDatesCSV()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating financial dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "source"}); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, d := range dates {
		if err := w.Write([]string{d.Date, d.Source}); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
