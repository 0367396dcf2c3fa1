package driven

import (
	"context"

	"github.com/repovec/repovec/internal/core/domain"
)

// CollectionStore persists collections.
type CollectionStore interface {
	// Save stores or updates a collection.
	Save(ctx context.Context, collection domain.Collection) error

	// Get retrieves a collection by ID.
	Get(ctx context.Context, id string) (*domain.Collection, error)

	// List returns all collections.
	List(ctx context.Context) ([]domain.Collection, error)

	// Delete removes an empty collection. Returns
	// domain.ErrCollectionNotEmpty while sources still reference it.
	Delete(ctx context.Context, id string) error
}

// SourceStore persists sources.
type SourceStore interface {
	// Save stores or updates a source. The owning collection must exist.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// ListByCollection returns all sources in a collection.
	ListByCollection(ctx context.Context, collectionID string) ([]domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source, cascading to its documents and chunks.
	Delete(ctx context.Context, id string) error
}

// DocumentStore persists documents and their chunks.
//
// ReplaceDocument is the single write path used by ingestion: one
// transaction upserts the document row keyed on (source_id, path), deletes
// every prior chunk of that document and inserts the new ones. A reader
// never observes a mix of old and new chunks, and a mid-failure leaves the
// previous committed state intact.
type DocumentStore interface {
	// ReplaceDocument atomically commits a document body and its chunks.
	// The persisted document (with its assigned ID and timestamps) is
	// returned.
	ReplaceDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) (*domain.Document, error)

	// GetByPath retrieves a document by its natural key.
	GetByPath(ctx context.Context, sourceID, path string) (*domain.Document, error)

	// ListBySource returns all documents for a source.
	ListBySource(ctx context.Context, sourceID string) ([]domain.Document, error)

	// Delete removes a document, cascading to its chunks.
	Delete(ctx context.Context, id string) error

	// DeletePathsNotIn removes every document of the source whose path is
	// not in keep, cascading to chunks. Returns the number of documents
	// removed. Used to prune files that disappeared from the crawl.
	DeletePathsNotIn(ctx context.Context, sourceID string, keep []string) (int, error)

	// ChunksByDocument returns a document's chunks ordered by chunk_index.
	ChunksByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ChunksByScope returns every chunk inside the scope. The scoped scan
	// relies on the denormalised source_id/collection_id columns; scope
	// validity is the caller's concern.
	ChunksByScope(ctx context.Context, scope domain.SearchScope) ([]domain.Chunk, error)
}
