package driven

import (
	"context"

	"github.com/repovec/repovec/internal/core/domain"
)

// Crawler walks one configured source and yields its files.
// Filtering is NOT the crawler's job: the ingestion coordinator applies the
// source's extension/directory rules to everything a crawler yields.
type Crawler interface {
	// Validate checks the crawler is properly configured and the remote
	// side is reachable. Returns nil if ready to crawl.
	Validate(ctx context.Context) error

	// Crawl streams every file of the source's branch. Both channels are
	// closed when the walk finishes; a value on the error channel aborts
	// the walk.
	Crawl(ctx context.Context) (<-chan domain.CrawledFile, <-chan error)

	// Close releases resources.
	Close() error
}

// CrawlerFactory builds a crawler for a source.
type CrawlerFactory interface {
	// Create returns a crawler for the given source.
	Create(ctx context.Context, source domain.Source) (Crawler, error)
}
