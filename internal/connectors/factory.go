// Package connectors routes sources to the crawler implementation that can
// serve them. Sources with an owner are remote GitHub repositories; sources
// without one are local directory trees.
package connectors

import (
	"context"

	"github.com/repovec/repovec/internal/connectors/filesystem"
	"github.com/repovec/repovec/internal/connectors/github"
	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// Ensure the interface is implemented.
var _ driven.CrawlerFactory = (*Factory)(nil)

// Factory dispatches crawler creation by source shape.
type Factory struct {
	github     *github.Factory
	filesystem *filesystem.Factory
}

// NewFactory creates the dispatching factory. The token authenticates
// GitHub crawls and may be empty for public repositories.
func NewFactory(githubToken string) *Factory {
	return &Factory{
		github:     github.NewFactory(githubToken),
		filesystem: filesystem.NewFactory(),
	}
}

// Create returns the crawler matching the source.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Crawler, error) {
	if source.Owner != "" {
		return f.github.Create(ctx, source)
	}
	return f.filesystem.Create(ctx, source)
}
