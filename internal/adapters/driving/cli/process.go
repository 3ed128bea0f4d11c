package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "Extract text from documents into the corpus",
	Long: `Extracts text from a file or recursively from a directory and stores
the results as corpus artifacts. Already-extracted content (matched by
fingerprint) is skipped; name collisions are stored under a suffixed
name so nothing is ever overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&corpusDirOverride, "output", "o", "",
		"corpus directory override")
	processCmd.Flags().IntVar(&ingestWorkers, "workers", 0,
		"extraction parallelism for directory runs")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	// Per-file failures are reported in the outcome and do not fail the
	// run; only unrecoverable problems (bad path) exit non-zero.
	if !info.IsDir() {
		outcome, err := ingestService.ProcessFile(ctx, path)
		if err != nil {
			return fmt.Errorf("process failed: %w", err)
		}
		printOutcome(cmd, outcome)
		return nil
	}

	cmd.Printf("Processing %s...\n", path)
	report, err := ingestService.ProcessDirectory(ctx, path)
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	for i := range report.Outcomes {
		printOutcome(cmd, &report.Outcomes[i])
	}
	cmd.Printf("\n%d processed, %d renamed, %d skipped, %d failed\n",
		report.Processed(), report.Renamed(), report.Skipped(), report.Failed())
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *domain.FileOutcome) {
	switch outcome.Status {
	case domain.StatusProcessed:
		cmd.Printf("  ok       %s -> %s\n", outcome.SourcePath, outcome.OutputName)
	case domain.StatusRenamed:
		cmd.Printf("  renamed  %s -> %s (%s)\n", outcome.SourcePath, outcome.OutputName, outcome.Reason)
	case domain.StatusSkipped:
		cmd.Printf("  skipped  %s (%s)\n", outcome.SourcePath, outcome.Reason)
	case domain.StatusUnsupported:
		cmd.Printf("  ignored  %s (%s)\n", outcome.SourcePath, outcome.Reason)
	default:
		cmd.Printf("  failed   %s (%s)\n", outcome.SourcePath, outcome.Reason)
	}
}
