package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Long: `Deletes one ingested document. The next full ingestion run will
re-ingest it if the file still exists in the source.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if err := catalogService.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
