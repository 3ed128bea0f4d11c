package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

var askShowScores bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from the corpus",
	Long: `Retrieves the passages most relevant to the question and synthesizes
an answer grounded in them. When generation is unavailable the best
matching passage is returned verbatim instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowScores, "scores", false, "show retrieval scores per passage")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")

	answer, err := queryService.Ask(context.Background(), question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if answer.Mode == domain.ModeExtractive && len(answer.Retrieved) > 0 {
		cmd.Println("\n(extrait du document, génération indisponible)")
	}

	if len(answer.Sources) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}

	if askShowScores {
		for _, retrieved := range answer.Retrieved {
			cmd.Printf("  %.3f  %s\n", retrieved.Score, retrieved.Unit.DocumentName)
		}
	}

	cmd.Printf("\n%s, %.2fs\n", answer.Mode, answer.Duration.Seconds())
	return nil
}
