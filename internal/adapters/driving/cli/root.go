// Package cli provides the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dossier-labs/dossier-cli/internal/core/ports/driving"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// Services groups the driving ports the commands call.
type Services struct {
	Ingest driving.IngestService
	Query  driving.QueryService
	Index  driving.IndexService
}

// Overrides carries flag-level overrides into service construction.
type Overrides struct {
	// CorpusDir overrides the configured artifact directory.
	CorpusDir string

	// Workers overrides the configured extraction parallelism.
	Workers int
}

var (
	ingestService driving.IngestService
	queryService  driving.QueryService
	indexService  driving.IndexService

	builder func(Overrides) (Services, error)

	verbose           bool
	corpusDirOverride string
	ingestWorkers     int
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Ingest administrative documents and ask questions about them",
	Long: `Dossier extracts text from administrative documents (scans, PDFs,
Word files, plain text), stores the results as a searchable corpus, and
answers questions grounded in that corpus.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// version needs no services and must work even when the stores
		// cannot be opened.
		if builder == nil || cmd.Name() == "version" {
			return nil
		}
		services, err := builder(Overrides{
			CorpusDir: corpusDirOverride,
			Workers:   ingestWorkers,
		})
		if err != nil {
			return err
		}
		SetServices(services)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose progress output on stderr")
}

// SetServices wires the driving services into the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	indexService = s.Index
}

// SetBuilder installs the factory that constructs the services after
// flags are parsed, so flag overrides can shape construction.
func SetBuilder(fn func(Overrides) (Services, error)) {
	builder = fn
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
