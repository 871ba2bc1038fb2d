package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path|url>...",
	Short: "Ingest PDFs, images, or YouTube videos into the corpus",
	Long: `Ingests one or more sources into the local corpus. Files are routed
by extension (.pdf, .png, .jpg, .jpeg), YouTube URLs by host, and
directories are scanned for supported files. Re-ingesting a source whose
index already exists is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	failed := 0
	for _, arg := range args {
		if err := ingestOne(ctx, arg); err != nil {
			failed++
			cmd.PrintErrf("ingest %s: %v\n", arg, err)
			continue
		}
		cmd.Printf("Ingested %s\n", arg)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(args))
	}
	return nil
}

// ingestOne routes a single argument to the matching ingest operation.
func ingestOne(ctx context.Context, arg string) error {
	if isYouTubeURL(arg) {
		return ingestService.IngestYouTube(ctx, arg)
	}

	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return ingestService.IngestDir(ctx, arg)
	}

	switch ext := strings.ToLower(filepath.Ext(arg)); ext {
	case ".pdf":
		return ingestService.IngestPDF(ctx, arg)
	case ".png", ".jpg", ".jpeg":
		return ingestService.IngestImage(ctx, arg)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, arg)
	}
}

func isYouTubeURL(arg string) bool {
	return strings.Contains(arg, "youtube.com/") || strings.Contains(arg, "youtu.be/")
}
