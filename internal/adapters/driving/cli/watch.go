package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directories and ingest new files",
	Long: `Watches the pdfs/ and images/ directories under the data dir and
ingests files as they appear. Events are handled sequentially; stop
with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range []string{appPaths.PDFs(), appPaths.Images()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		cmd.Printf("Watching %s\n", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			handleWatchEvent(ctx, cmd, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleWatchEvent ingests a newly appearing file, routed by extension.
func handleWatchEvent(ctx context.Context, cmd *cobra.Command, path string) {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		err = ingestService.IngestPDF(ctx, path)
	case ".png", ".jpg", ".jpeg":
		err = ingestService.IngestImage(ctx, path)
	default:
		return
	}
	if err != nil {
		cmd.PrintErrf("ingest %s: %v\n", path, err)
		return
	}
	cmd.Printf("Ingested %s\n", path)
}
