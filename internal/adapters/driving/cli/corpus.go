package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus artifacts with their provenance",
	RunE:  runList,
}

var cleanForce bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all artifacts and reset the retrieval index",
	RunE:  runClean,
}

var checkConflictsCmd = &cobra.Command{
	Use:   "check-conflicts <file-or-directory>",
	Short: "Preview how candidate files would be resolved, without extracting",
	Long: `Classifies each candidate file against the current corpus: skipped
(content already extracted), renamed (output name taken by different
content) or clean. Nothing is extracted or stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckConflicts,
}

var verifyRebuild bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that artifacts on disk agree with the corpus index",
	Long: `Compares the on-disk artifact set against the corpus index and reports
disagreements. With --rebuild, the index is reconstructed from the
artifact provenance headers first.`,
	RunE: runVerify,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "do not ask for confirmation")
	verifyCmd.Flags().BoolVar(&verifyRebuild, "rebuild", false,
		"reconstruct the index from artifact headers before checking")
	for _, cmd := range []*cobra.Command{listCmd, cleanCmd, checkConflictsCmd, verifyCmd} {
		cmd.Flags().StringVarP(&corpusDirOverride, "output", "o", "",
			"corpus directory override")
	}
	rootCmd.AddCommand(listCmd, cleanCmd, checkConflictsCmd, verifyCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	entries, err := ingestService.List(context.Background())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("Corpus is empty.")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("%s\n", entry.OutputName)
		cmd.Printf("    source:    %s\n", entry.SourcePath)
		cmd.Printf("    kind:      %s\n", entry.Kind)
		if entry.Language != "" {
			cmd.Printf("    language:  %s\n", entry.Language)
		}
		cmd.Printf("    extracted: %s (%d chars)\n",
			entry.ExtractedAt.Format("2006-01-02 15:04:05"), entry.TextLength)
	}
	cmd.Printf("\n%d document(s)\n", len(entries))
	return nil
}

func runClean(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if !cleanForce {
		cmd.Print("Remove all corpus artifacts and the retrieval index? [y/N] ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := ingestService.Clean(context.Background()); err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}
	cmd.Println("Corpus cleaned.")
	return nil
}

func runCheckConflicts(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	resolutions, err := ingestService.CheckConflicts(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if len(resolutions) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}

	conflicts := 0
	for _, res := range resolutions {
		switch res.Case {
		case domain.CaseSkip:
			cmd.Printf("  skip    %s (already extracted as %s)\n",
				res.BaseName, res.PriorEntry.OutputName)
		case domain.CaseRename:
			conflicts++
			cmd.Printf("  rename  %s -> %s (name held by %s)\n",
				res.BaseName, res.OutputName, res.PriorEntry.SourcePath)
		default:
			cmd.Printf("  clean   %s\n", res.OutputName)
		}
	}
	cmd.Printf("\n%d candidate(s), %d conflict(s)\n", len(resolutions), conflicts)
	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	ctx := context.Background()

	if verifyRebuild {
		recovered, err := ingestService.RebuildIndex(ctx)
		if err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		cmd.Printf("Recovered %d entries from artifact headers.\n", recovered)
	}

	if err := ingestService.Verify(ctx); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	cmd.Println("Corpus and index are consistent.")
	return nil
}
