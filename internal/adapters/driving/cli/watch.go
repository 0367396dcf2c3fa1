package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/repovec/repovec/internal/connectors/filesystem"
	"github.com/repovec/repovec/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source-id]",
	Short: "Watch a local source and re-ingest changed files",
	Long: `Watches a local directory source and re-ingests files as they are
created or modified. Watch runs are scoped: documents absent from the
event stream are never pruned. Only filesystem sources can be watched.
Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if catalogService == nil || ingestService == nil {
		return errors.New("services not configured")
	}

	source, err := findSource(context.Background(), args[0])
	if err != nil {
		return err
	}
	if source.Owner != "" {
		return fmt.Errorf("source %s is a remote repository; only local sources can be watched", source.ID)
	}

	watcher, err := filesystem.NewWatcher(source.Repo)
	if err != nil {
		return fmt.Errorf("watch %s: %w", source.Repo, err)
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)...\n", source.Repo)

	files, errs := watcher.Watch(ctx)
	report, err := ingestService.IngestFiles(ctx, source.ID, files, errs, false)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch ingest failed: %w", err)
	}

	if report != nil {
		printReport(cmd, report)
	}
	return nil
}

// findSource resolves a source ID through the catalog.
func findSource(ctx context.Context, id string) (*domain.Source, error) {
	sources, err := catalogService.ListSources(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	for i := range sources {
		if sources[i].ID == id {
			return &sources[i], nil
		}
	}
	return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
}
