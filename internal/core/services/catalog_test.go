package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/adapters/driven/storage/memory"
	"github.com/repovec/repovec/internal/core/domain"
)

func newCatalogService() (*CatalogService, *memory.DocumentStore) {
	docs := memory.NewDocumentStore()
	sources := memory.NewSourceStore(docs)
	collections := memory.NewCollectionStore(sources)
	return NewCatalogService(collections, sources, docs), docs
}

func TestCatalog_CreateCollection(t *testing.T) {
	svc, _ := newCatalogService()

	collection, err := svc.CreateCollection(context.Background(), "  docs  ")

	require.NoError(t, err)
	assert.NotEmpty(t, collection.ID)
	assert.Equal(t, "docs", collection.Name)
	assert.False(t, collection.CreatedAt.IsZero())
}

func TestCatalog_CreateCollection_EmptyName(t *testing.T) {
	svc, _ := newCatalogService()

	_, err := svc.CreateCollection(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_ListCollections(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	_, err := svc.CreateCollection(ctx, "one")
	require.NoError(t, err)
	_, err = svc.CreateCollection(ctx, "two")
	require.NoError(t, err)

	collections, err := svc.ListCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, collections, 2)
}

func TestCatalog_AddSource(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	collection, err := svc.CreateCollection(ctx, "docs")
	require.NoError(t, err)

	source, err := svc.AddSource(ctx, domain.Source{
		CollectionID: collection.ID,
		Owner:        "acme",
		Repo:         "handbook",
		Branch:       "main",
		AllowedExt:   []string{".md"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, source.ID)
	assert.Equal(t, collection.ID, source.CollectionID)

	sources, err := svc.ListSources(ctx, collection.ID)
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestCatalog_AddSource_MissingFields(t *testing.T) {
	svc, _ := newCatalogService()

	_, err := svc.AddSource(context.Background(), domain.Source{
		Owner: "acme", Repo: "handbook",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_AddSource_UnknownCollection(t *testing.T) {
	svc, _ := newCatalogService()

	_, err := svc.AddSource(context.Background(), domain.Source{
		CollectionID: "col-nope",
		Owner:        "acme",
		Repo:         "handbook",
		Branch:       "main",
		AllowedExt:   []string{".md"},
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_AddSource_MalformedFilterRules(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	collection, err := svc.CreateCollection(ctx, "docs")
	require.NoError(t, err)

	_, err = svc.AddSource(ctx, domain.Source{
		CollectionID: collection.ID,
		Owner:        "acme",
		Repo:         "handbook",
		Branch:       "main",
		AllowedExt:   []string{".md"},
		AllowedDirs:  []string{"../outside"},
	})

	var filterErr *domain.FilterConfigError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, "allowed_dirs", filterErr.Rule)
}

func TestCatalog_DeleteCollection_OrderEnforced(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	collection, err := svc.CreateCollection(ctx, "docs")
	require.NoError(t, err)
	source, err := svc.AddSource(ctx, domain.Source{
		CollectionID: collection.ID,
		Owner:        "acme",
		Repo:         "handbook",
		Branch:       "main",
		AllowedExt:   []string{".md"},
	})
	require.NoError(t, err)

	err = svc.DeleteCollection(ctx, collection.ID)
	assert.ErrorIs(t, err, domain.ErrCollectionNotEmpty)

	require.NoError(t, svc.DeleteSource(ctx, source.ID))
	require.NoError(t, svc.DeleteCollection(ctx, collection.ID))
}

func TestCatalog_DeleteSource_CascadesDocuments(t *testing.T) {
	svc, docs := newCatalogService()
	ctx := context.Background()

	collection, err := svc.CreateCollection(ctx, "docs")
	require.NoError(t, err)
	source, err := svc.AddSource(ctx, domain.Source{
		CollectionID: collection.ID,
		Owner:        "acme",
		Repo:         "handbook",
		Branch:       "main",
		AllowedExt:   []string{".md"},
	})
	require.NoError(t, err)

	_, err = docs.ReplaceDocument(ctx, domain.Document{
		ID: "doc-1", SourceID: source.ID, CollectionID: collection.ID, Path: "a.md",
	}, []domain.Chunk{{ID: "c1", SourceID: source.ID, CollectionID: collection.ID}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSource(ctx, source.ID))

	remaining, err := docs.ListBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCatalog_DeleteDocument(t *testing.T) {
	svc, docs := newCatalogService()
	ctx := context.Background()

	_, err := docs.ReplaceDocument(ctx, domain.Document{
		ID: "doc-1", SourceID: "src-1", CollectionID: "col-1", Path: "a.md",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, "doc-1"))
	assert.ErrorIs(t, svc.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}
