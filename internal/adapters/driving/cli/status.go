package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report capability availability and index sizes",
	RunE:  runStatus,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the document names answers can cite",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(statusCmd, sourcesCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	health := queryService.Health(context.Background())

	cmd.Printf("embedding:  %s\n", readiness(health.EmbeddingReady))
	cmd.Printf("generation: %s\n", readiness(health.GenerationReady))
	cmd.Printf("documents:  %d\n", health.CorpusDocuments)
	cmd.Printf("units:      %d\n", health.IndexedUnits)

	if !health.EmbeddingReady {
		cmd.Println("\nRetrieval is unavailable; questions will return the no-information answer.")
	} else if !health.GenerationReady {
		cmd.Println("\nGeneration is unavailable; answers fall back to extracted passages.")
	}
	return nil
}

func runSources(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	names, err := queryService.Sources(context.Background())
	if err != nil {
		return fmt.Errorf("sources failed: %w", err)
	}

	if len(names) == 0 {
		cmd.Println("Corpus is empty.")
		return nil
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func readiness(ready bool) string {
	if ready {
		return "ready"
	}
	return "unavailable"
}
