package driving

import (
	"context"

	"github.com/repovec/repovec/internal/core/domain"
)

// CatalogManager exposes collection/source lifecycle to the caller layer.
type CatalogManager interface {
	// CreateCollection creates a named collection.
	CreateCollection(ctx context.Context, name string) (*domain.Collection, error)

	// ListCollections returns all collections.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// DeleteCollection removes an empty collection.
	DeleteCollection(ctx context.Context, id string) error

	// AddSource registers a repository under a collection.
	AddSource(ctx context.Context, source domain.Source) (*domain.Source, error)

	// ListSources returns sources, optionally scoped to a collection.
	ListSources(ctx context.Context, collectionID string) ([]domain.Source, error)

	// DeleteSource removes a source, cascading to documents and chunks.
	DeleteSource(ctx context.Context, id string) error

	// DeleteDocument removes one document, cascading to its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
