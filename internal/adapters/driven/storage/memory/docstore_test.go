package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
	assert.NotNil(t, store.byPath)
}

func TestDocumentStore_ReplaceDocument_Insert(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := domain.Document{
		ID:           "doc-1",
		SourceID:     "src-1",
		CollectionID: "col-1",
		Path:         "docs/readme.md",
		Checksum:     42,
		Data:         "hello",
	}
	chunks := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", SourceID: "src-1", CollectionID: "col-1", ChunkIndex: 0, Data: "hello"},
	}

	saved, err := store.ReplaceDocument(ctx, doc, chunks)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)

	got, err := store.GetByPath(ctx, "src-1", "docs/readme.md")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), got.Checksum)

	stored, err := store.ChunksByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDocumentStore_ReplaceDocument_KeepsIDOnSamePath(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	first := domain.Document{ID: "doc-1", SourceID: "src-1", Path: "a.md", Checksum: 1}
	_, err := store.ReplaceDocument(ctx, first, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", ChunkIndex: 0},
		{ID: "chunk-2", DocumentID: "doc-1", ChunkIndex: 1},
		{ID: "chunk-3", DocumentID: "doc-1", ChunkIndex: 2},
	})
	require.NoError(t, err)

	// Re-ingest the same path with a fresh candidate ID and fewer chunks.
	second := domain.Document{ID: "doc-2", SourceID: "src-1", Path: "a.md", Checksum: 2}
	saved, err := store.ReplaceDocument(ctx, second, []domain.Chunk{
		{ID: "chunk-4", DocumentID: "doc-2", ChunkIndex: 0},
		{ID: "chunk-5", DocumentID: "doc-2", ChunkIndex: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)

	docs, err := store.ListBySource(ctx, "src-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint32(2), docs[0].Checksum)

	chunks, err := store.ChunksByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, "doc-1", chunks[1].DocumentID)
}

func TestDocumentStore_ReplaceDocument_SamePathDifferentSources(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.ReplaceDocument(ctx, domain.Document{ID: "doc-1", SourceID: "src-1", Path: "a.md"}, nil)
	require.NoError(t, err)
	_, err = store.ReplaceDocument(ctx, domain.Document{ID: "doc-2", SourceID: "src-2", Path: "a.md"}, nil)
	require.NoError(t, err)

	got1, err := store.GetByPath(ctx, "src-1", "a.md")
	require.NoError(t, err)
	got2, err := store.GetByPath(ctx, "src-2", "a.md")
	require.NoError(t, err)
	assert.NotEqual(t, got1.ID, got2.ID)
}

func TestDocumentStore_GetByPath_NotFound(t *testing.T) {
	store := NewDocumentStore()

	doc, err := store.GetByPath(context.Background(), "src-1", "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.ReplaceDocument(ctx, domain.Document{ID: "doc-1", SourceID: "src-1", Path: "a.md"},
		[]domain.Chunk{{ID: "chunk-1", DocumentID: "doc-1"}})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err = store.GetByPath(ctx, "src-1", "a.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.ChunksByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_Delete_NotFound(t *testing.T) {
	store := NewDocumentStore()

	err := store.Delete(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeletePathsNotIn(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	for _, path := range []string{"a.md", "b.md", "c.md"} {
		_, err := store.ReplaceDocument(ctx, domain.Document{
			ID: "doc-" + path, SourceID: "src-1", Path: path,
		}, nil)
		require.NoError(t, err)
	}
	_, err := store.ReplaceDocument(ctx, domain.Document{
		ID: "doc-other", SourceID: "src-2", Path: "a.md",
	}, nil)
	require.NoError(t, err)

	deleted, err := store.DeletePathsNotIn(ctx, "src-1", []string{"a.md", "c.md"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	docs, err := store.ListBySource(ctx, "src-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "c.md", docs[1].Path)

	// Other sources are untouched.
	_, err = store.GetByPath(ctx, "src-2", "a.md")
	assert.NoError(t, err)
}

func TestDocumentStore_DeletePathsNotIn_EmptyKeep(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.ReplaceDocument(ctx, domain.Document{ID: "doc-1", SourceID: "src-1", Path: "a.md"}, nil)
	require.NoError(t, err)

	deleted, err := store.DeletePathsNotIn(ctx, "src-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestDocumentStore_ChunksByScope(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.ReplaceDocument(ctx,
		domain.Document{ID: "doc-1", SourceID: "src-1", CollectionID: "col-1", Path: "a.md"},
		[]domain.Chunk{
			{ID: "chunk-1", DocumentID: "doc-1", SourceID: "src-1", CollectionID: "col-1"},
			{ID: "chunk-2", DocumentID: "doc-1", SourceID: "src-1", CollectionID: "col-1"},
		})
	require.NoError(t, err)
	_, err = store.ReplaceDocument(ctx,
		domain.Document{ID: "doc-2", SourceID: "src-2", CollectionID: "col-1", Path: "b.md"},
		[]domain.Chunk{
			{ID: "chunk-3", DocumentID: "doc-2", SourceID: "src-2", CollectionID: "col-1"},
		})
	require.NoError(t, err)
	_, err = store.ReplaceDocument(ctx,
		domain.Document{ID: "doc-3", SourceID: "src-3", CollectionID: "col-2", Path: "c.md"},
		[]domain.Chunk{
			{ID: "chunk-4", DocumentID: "doc-3", SourceID: "src-3", CollectionID: "col-2"},
		})
	require.NoError(t, err)

	byCollection, err := store.ChunksByScope(ctx, domain.SearchScope{CollectionID: "col-1"})
	require.NoError(t, err)
	assert.Len(t, byCollection, 3)

	bySource, err := store.ChunksByScope(ctx, domain.SearchScope{SourceID: "src-2"})
	require.NoError(t, err)
	assert.Len(t, bySource, 1)

	both, err := store.ChunksByScope(ctx, domain.SearchScope{CollectionID: "col-1", SourceID: "src-1"})
	require.NoError(t, err)
	assert.Len(t, both, 2)

	empty, err := store.ChunksByScope(ctx, domain.SearchScope{CollectionID: "col-nope"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSourceStore_Delete_CascadesDocuments(t *testing.T) {
	docs := NewDocumentStore()
	sources := NewSourceStore(docs)
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "src-1", CollectionID: "col-1"}))
	_, err := docs.ReplaceDocument(ctx, domain.Document{ID: "doc-1", SourceID: "src-1", Path: "a.md"},
		[]domain.Chunk{{ID: "chunk-1", DocumentID: "doc-1", SourceID: "src-1"}})
	require.NoError(t, err)

	require.NoError(t, sources.Delete(ctx, "src-1"))

	remaining, err := docs.ListBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCollectionStore_Delete_RefusesWhileSourcesRemain(t *testing.T) {
	docs := NewDocumentStore()
	sources := NewSourceStore(docs)
	collections := NewCollectionStore(sources)
	ctx := context.Background()

	require.NoError(t, collections.Save(ctx, domain.Collection{ID: "col-1", Name: "docs"}))
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "src-1", CollectionID: "col-1"}))

	err := collections.Delete(ctx, "col-1")
	assert.ErrorIs(t, err, domain.ErrCollectionNotEmpty)

	require.NoError(t, sources.Delete(ctx, "src-1"))
	require.NoError(t, collections.Delete(ctx, "col-1"))
}

func TestDocumentStore_Concurrency_ReplaceAndRead(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			path := "file-" + string(rune('A'+id%10)) + ".md"
			doc := domain.Document{
				ID:       "doc-" + string(rune('A'+id)),
				SourceID: "src-1",
				Path:     path,
			}
			_, _ = store.ReplaceDocument(ctx, doc, nil)
			_, _ = store.GetByPath(ctx, "src-1", path)
			_, _ = store.ListBySource(ctx, "src-1")
		}(i)
	}
	wg.Wait()

	// Ten distinct paths means ten documents regardless of interleaving.
	docs, err := store.ListBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Len(t, docs, 10)
}
