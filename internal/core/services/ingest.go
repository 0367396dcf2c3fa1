package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repovec/repovec/internal/checksum"
	"github.com/repovec/repovec/internal/chunker"
	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/core/ports/driving"
	"github.com/repovec/repovec/internal/logger"
)

// DefaultIngestWorkers bounds parallel chunk/embed work across documents.
const DefaultIngestWorkers = 4

// Ensure IngestCoordinator implements the interface.
var _ driving.Ingestor = (*IngestCoordinator)(nil)

// IngestCoordinator orchestrates the diff between crawled files and stored
// documents. Per document it runs filter, checksum comparison, chunking,
// embedding and an atomic commit; document failures are isolated into the
// run report.
type IngestCoordinator struct {
	sources  driven.SourceStore
	docs     driven.DocumentStore
	crawlers driven.CrawlerFactory
	embedder *EmbedClient
	splitter *chunker.Splitter
	workers  int

	// pathLocks serialises racing ingestion of the same (source, path)
	// so two checksum comparisons cannot race into a lost update.
	pathLocks *keyedMutex
}

// NewIngestCoordinator creates an ingestion coordinator.
// workers <= 0 selects the default pool size.
func NewIngestCoordinator(
	sources driven.SourceStore,
	docs driven.DocumentStore,
	crawlers driven.CrawlerFactory,
	embedder *EmbedClient,
	splitter *chunker.Splitter,
	workers int,
) *IngestCoordinator {
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}
	return &IngestCoordinator{
		sources:   sources,
		docs:      docs,
		crawlers:  crawlers,
		embedder:  embedder,
		splitter:  splitter,
		workers:   workers,
		pathLocks: newKeyedMutex(),
	}
}

// Ingest crawls the source and runs the pipeline over everything it yields.
// A full crawl prunes stored documents the crawler no longer reports.
func (c *IngestCoordinator) Ingest(ctx context.Context, sourceID string) (*domain.IngestReport, error) {
	source, err := c.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	crawler, err := c.crawlers.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create crawler: %w", err)
	}
	defer crawler.Close()

	if err := crawler.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate crawler: %w", err)
	}

	files, errs := crawler.Crawl(ctx)
	return c.run(ctx, source, files, errs, true)
}

// IngestFiles runs the pipeline over an externally supplied crawl stream.
func (c *IngestCoordinator) IngestFiles(
	ctx context.Context,
	sourceID string,
	files <-chan domain.CrawledFile,
	errs <-chan error,
	prune bool,
) (*domain.IngestReport, error) {
	source, err := c.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return c.run(ctx, source, files, errs, prune)
}

// run drives one ingestion run: dispatch accepted files to a bounded worker
// pool, collect per-document outcomes, then prune documents missing from
// the crawl.
func (c *IngestCoordinator) run(
	ctx context.Context,
	source *domain.Source,
	files <-chan domain.CrawledFile,
	errs <-chan error,
	prune bool,
) (*domain.IngestReport, error) {
	filter, err := domain.NewPathFilter(source)
	if err != nil {
		// Filtering cannot be evaluated at all: fatal to the source run.
		return nil, err
	}

	logger.Info("Starting ingestion for source %s (%s)", source.ID, source.FullName())

	report := &domain.IngestReport{SourceID: source.ID}
	var mu sync.Mutex
	var seen []string

	jobs := make(chan domain.CrawledFile)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				changed, err := c.processFile(ctx, source, file)
				mu.Lock()
				switch {
				case err != nil:
					logger.Warn("Failed to ingest %s: %v", file.Path, err)
					report.Failed = append(report.Failed, domain.FileError{Path: file.Path, Err: err})
				case changed:
					report.Changed++
				default:
					report.Unchanged++
				}
				mu.Unlock()
			}
		}()
	}

	var runErr error
loop:
	for files != nil || errs != nil {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				runErr = fmt.Errorf("crawl: %w", err)
				break loop
			}

		case file, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			if !filter.Match(file.Path) {
				logger.Debug("Skipping %s: filtered out", file.Path)
				continue
			}
			mu.Lock()
			seen = append(seen, file.Path)
			mu.Unlock()

			select {
			case jobs <- file:
			case <-ctx.Done():
				runErr = ctx.Err()
				break loop
			}
		}
	}

	close(jobs)
	wg.Wait()

	if runErr != nil {
		return report, runErr
	}

	if prune {
		deleted, err := c.docs.DeletePathsNotIn(ctx, source.ID, seen)
		if err != nil {
			return report, &domain.StorageError{Op: "prune documents", Err: err}
		}
		report.Deleted = deleted
	}

	logger.Info("Ingestion complete for %s: %d changed, %d unchanged, %d deleted, %d failed",
		source.ID, report.Changed, report.Unchanged, report.Deleted, len(report.Failed))
	return report, nil
}

// processFile runs the per-document state machine:
// fetched -> checksum compared -> {unchanged | chunked -> embedded -> committed}.
// Returns changed=false when the stored checksum matched and all downstream
// work was skipped.
func (c *IngestCoordinator) processFile(ctx context.Context, source *domain.Source, file domain.CrawledFile) (bool, error) {
	unlock := c.pathLocks.Lock(source.ID + "\x00" + file.Path)
	defer unlock()

	sum := checksum.Sum(file.Data)

	existing, err := c.docs.GetByPath(ctx, source.ID, file.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, &domain.StorageError{Op: "get document", Err: err}
	}
	if existing != nil && existing.Checksum == sum {
		logger.Debug("Unchanged: %s", file.Path)
		return false, nil
	}

	text := string(file.Data)
	pieces, err := c.splitter.Split(file.Path, text)
	if err != nil {
		return false, err
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Data
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return false, err
	}

	doc := domain.Document{
		ID:           uuid.New().String(),
		SourceID:     source.ID,
		CollectionID: source.CollectionID,
		Path:         file.Path,
		Checksum:     sum,
		TokensLen:    chunker.TokenCount(text),
		Data:         text,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			SourceID:     source.ID,
			CollectionID: source.CollectionID,
			ChunkIndex:   i,
			Context:      p.Context,
			Data:         p.Data,
			Vector:       vectors[i],
		}
	}

	if _, err := c.docs.ReplaceDocument(ctx, doc, chunks); err != nil {
		return false, &domain.StorageError{Op: "replace document", Err: err}
	}

	logger.Debug("Committed %s: %d chunks", file.Path, len(chunks))
	return true, nil
}
