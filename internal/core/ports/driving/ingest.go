package driving

import (
	"context"

	"github.com/repovec/repovec/internal/core/domain"
)

// Ingestor drives ingestion runs.
type Ingestor interface {
	// Ingest crawls the source and commits changed documents.
	// Document-level failures are recorded in the report; the run
	// continues past them.
	Ingest(ctx context.Context, sourceID string) (*domain.IngestReport, error)

	// IngestFiles runs the pipeline over an externally supplied crawl
	// stream. Pruning of absent documents happens only when prune is
	// true (a full, unscoped run).
	IngestFiles(ctx context.Context, sourceID string, files <-chan domain.CrawledFile, errs <-chan error, prune bool) (*domain.IngestReport, error)
}
