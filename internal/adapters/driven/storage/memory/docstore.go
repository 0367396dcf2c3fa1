package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It keeps the same (source_id, path) uniqueness and replace-atomicity
// guarantees as the SQLite store, which makes it a drop-in for service
// tests.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	byPath    map[pathKey]string
}

type pathKey struct {
	sourceID string
	path     string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		byPath:    make(map[pathKey]string),
	}
}

// ReplaceDocument atomically commits a document body and its chunks.
// An existing document at the same (source_id, path) keeps its ID and
// creation time; only the body, checksum and chunks are replaced.
func (s *DocumentStore) ReplaceDocument(
	_ context.Context, doc domain.Document, chunks []domain.Chunk,
) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pathKey{sourceID: doc.SourceID, path: doc.Path}
	if existingID, ok := s.byPath[key]; ok {
		existing := s.documents[existingID]
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	}

	stored := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		stored[i] = chunk
	}

	s.documents[doc.ID] = doc
	s.chunks[doc.ID] = stored
	s.byPath[key] = doc.ID
	return &doc, nil
}

// GetByPath retrieves a document by its natural key.
func (s *DocumentStore) GetByPath(_ context.Context, sourceID, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[pathKey{sourceID: sourceID, path: path}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// ListBySource returns all documents for a source.
func (s *DocumentStore) ListBySource(_ context.Context, sourceID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for _, doc := range s.documents {
		if doc.SourceID == sourceID {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Delete removes a document, cascading to its chunks.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	delete(s.byPath, pathKey{sourceID: doc.SourceID, path: doc.Path})
	return nil
}

// DeletePathsNotIn removes every document of the source whose path is not
// in keep, cascading to chunks.
func (s *DocumentStore) DeletePathsNotIn(_ context.Context, sourceID string, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		keepSet[path] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, doc := range s.documents {
		if doc.SourceID != sourceID {
			continue
		}
		if _, ok := keepSet[doc.Path]; ok {
			continue
		}
		delete(s.documents, id)
		delete(s.chunks, id)
		delete(s.byPath, pathKey{sourceID: sourceID, path: doc.Path})
		deleted++
	}
	return deleted, nil
}

// ChunksByDocument returns a document's chunks ordered by chunk index.
func (s *DocumentStore) ChunksByDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[documentID]
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	sort.Slice(result, func(i, j int) bool { return result[i].ChunkIndex < result[j].ChunkIndex })
	return result, nil
}

// ChunksByScope returns every chunk inside the scope.
func (s *DocumentStore) ChunksByScope(_ context.Context, scope domain.SearchScope) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if scope.CollectionID != "" && chunk.CollectionID != scope.CollectionID {
				continue
			}
			if scope.SourceID != "" && chunk.SourceID != scope.SourceID {
				continue
			}
			result = append(result, chunk)
		}
	}
	return result, nil
}

// deleteBySource removes every document and chunk of a source. Used by the
// source store's cascade.
func (s *DocumentStore) deleteBySource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.documents {
		if doc.SourceID != sourceID {
			continue
		}
		delete(s.documents, id)
		delete(s.chunks, id)
		delete(s.byPath, pathKey{sourceID: sourceID, path: doc.Path})
	}
	return nil
}
