package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source-id]",
	Short: "Ingest a source",
	Long: `Crawls the source and commits changed documents: chunking, embedding
and storage per document. Unchanged documents are skipped by checksum;
documents missing from the crawl are pruned. Per-document failures are
reported at the end without aborting the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	sourceID := args[0]
	cmd.Printf("Ingesting source %s...\n", sourceID)

	report, err := ingestService.Ingest(context.Background(), sourceID)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Changed: %d, unchanged: %d, deleted: %d\n",
		report.Changed, report.Unchanged, report.Deleted)

	if len(report.Failed) > 0 {
		cmd.Printf("Failed: %d\n", len(report.Failed))
		for _, failure := range report.Failed {
			cmd.Printf("  %s: %v\n", failure.Path, failure.Err)
		}
	}
}
