// Package cli implements the finsight command line interface using
// cobra. Commands talk to the core services through the driving ports;
// the concrete wiring is injected by cmd/finsight via Configure.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/core/services"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Services bundles everything the commands need. The answer service is
// built per command because the corpus may change between invocations.
type Services struct {
	Paths       services.Paths
	Ingest      driving.IngestService
	Visualize   driving.VisualizeService
	Dates       *services.DatesService
	Finance     *services.FinanceService
	Reference   driven.ReferenceStore
	NewAnswerer func(ctx context.Context) (driving.AnswerService, error)
	NewSession  func() *services.Session
}

// Package-level services, assigned by Configure.
var (
	ingestService    driving.IngestService
	visualizeService driving.VisualizeService
	datesService     *services.DatesService
	financeService   *services.FinanceService
	referenceStore   driven.ReferenceStore
	newAnswerer      func(ctx context.Context) (driving.AnswerService, error)
	newSession       func() *services.Session
	appPaths         services.Paths
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Question answering over financial documents and media",
	Long: `finsight ingests PDFs, images, and YouTube videos into a local
vector corpus and answers questions over it with retrieval-augmented
generation. Chart questions are routed to built-in visualizations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Configure injects the wired services. Must be called before Execute.
func Configure(s Services) {
	appPaths = s.Paths
	ingestService = s.Ingest
	visualizeService = s.Visualize
	datesService = s.Dates
	financeService = s.Finance
	referenceStore = s.Reference
	newAnswerer = s.NewAnswerer
	newSession = s.NewSession
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
