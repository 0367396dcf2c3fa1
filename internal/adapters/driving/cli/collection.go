package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/core/domain"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
	Long:  `Create, list and delete collections. A collection groups sources into one retrieval scope.`,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionCreate,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE:  runCollectionList,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete [collection-id]",
	Short: "Delete an empty collection",
	Long:  `Deletes a collection. Fails while the collection still holds sources; delete those first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

func init() {
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	collection, err := catalogService.CreateCollection(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	cmd.Printf("Created collection %s (%s)\n", collection.Name, collection.ID)
	return nil
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	collections, err := catalogService.ListCollections(context.Background())
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, c := range collections {
		cmd.Printf("  %s  %s\n", c.ID, c.Name)
	}
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if err := catalogService.DeleteCollection(context.Background(), args[0]); err != nil {
		if errors.Is(err, domain.ErrCollectionNotEmpty) {
			return fmt.Errorf("collection %s still has sources; delete them first", args[0])
		}
		return fmt.Errorf("delete collection: %w", err)
	}

	cmd.Printf("Deleted collection %s\n", args[0])
	return nil
}
