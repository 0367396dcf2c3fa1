package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/core/domain"
)

var (
	sourceCollection  string
	sourceOwner       string
	sourceRepo        string
	sourceBranch      string
	sourceExt         []string
	sourceAllowedDirs []string
	sourceIgnoredDirs []string
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage sources",
	Long:  `Register, list and delete sources. A source is one repository branch plus the path filters applied to its files.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a source under a collection",
	Long: `Registers a repository branch under a collection.

Path filters are validated up front: extensions must start with a dot,
directory rules must be clean relative paths.`,
	Example: `  repovec source add --collection col-1 --owner golang --repo go --branch master --ext .md --ext .go
  repovec source add --collection col-1 --repo /path/to/checkout --ext .md`,
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources",
	RunE:  runSourceList,
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete [source-id]",
	Short: "Delete a source and everything ingested from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceDelete,
}

func init() {
	sourceAddCmd.Flags().StringVarP(&sourceCollection, "collection", "c", "", "collection to register under (required)")
	sourceAddCmd.Flags().StringVar(&sourceOwner, "owner", "", "repository owner")
	sourceAddCmd.Flags().StringVar(&sourceRepo, "repo", "", "repository name, or a local directory path (required)")
	sourceAddCmd.Flags().StringVar(&sourceBranch, "branch", "main", "branch to ingest")
	sourceAddCmd.Flags().StringSliceVar(&sourceExt, "ext", nil, "allowed file extension, repeatable (required)")
	sourceAddCmd.Flags().StringSliceVar(&sourceAllowedDirs, "dir", nil, "restrict ingestion to this subtree, repeatable")
	sourceAddCmd.Flags().StringSliceVar(&sourceIgnoredDirs, "ignore-dir", nil, "exclude this subtree, repeatable")
	_ = sourceAddCmd.MarkFlagRequired("collection")
	_ = sourceAddCmd.MarkFlagRequired("repo")
	_ = sourceAddCmd.MarkFlagRequired("ext")

	sourceListCmd.Flags().StringVarP(&sourceCollection, "collection", "c", "", "restrict to one collection")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceDeleteCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	source, err := catalogService.AddSource(context.Background(), domain.Source{
		CollectionID: sourceCollection,
		Owner:        sourceOwner,
		Repo:         sourceRepo,
		Branch:       sourceBranch,
		AllowedExt:   sourceExt,
		AllowedDirs:  sourceAllowedDirs,
		IgnoredDirs:  sourceIgnoredDirs,
	})
	if err != nil {
		var filterErr *domain.FilterConfigError
		if errors.As(err, &filterErr) {
			return fmt.Errorf("invalid filter rule: %w", err)
		}
		return fmt.Errorf("add source: %w", err)
	}

	cmd.Printf("Added source %s (%s)\n", source.FullName(), source.ID)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	sources, err := catalogService.ListSources(context.Background(), sourceCollection)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources.")
		return nil
	}

	for _, s := range sources {
		cmd.Printf("  %s  %s  [%s]\n", s.ID, s.FullName(), strings.Join(s.AllowedExt, " "))
	}
	return nil
}

func runSourceDelete(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if err := catalogService.DeleteSource(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	cmd.Printf("Deleted source %s\n", args[0])
	return nil
}
