package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/core/domain"
)

var (
	searchCollection string
	searchSource     string
	searchLimit      int
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested chunks",
	Long: `Embeds the query and ranks every chunk in scope by cosine similarity.
The scope is a collection, a source, or both.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "scope to one collection")
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "scope to one source")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("search service not configured")
	}

	scope := domain.SearchScope{
		CollectionID: searchCollection,
		SourceID:     searchSource,
	}
	if scope.Empty() {
		return errors.New("a scope is required: pass --collection and/or --source")
	}

	results, err := retrieverService.SearchText(context.Background(), args[0], scope, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range results {
		cmd.Printf("  [%d] %s #%d (%.4f)\n",
			i+1, result.Chunk.Context, result.Chunk.ChunkIndex, result.Score)
		cmd.Printf("      %s\n", snippet(result.Chunk.Data))
		cmd.Println()
	}
	return nil
}

// snippet truncates chunk text to one displayable line, cutting on a
// rune boundary.
func snippet(text string) string {
	const maxLen = 120
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
