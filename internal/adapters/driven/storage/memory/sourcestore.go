package memory

import (
	"context"
	"sync"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
	docs    *DocumentStore
}

// NewSourceStore creates a new in-memory source store. The document store
// receives cascading deletes; nil disables the cascade.
func NewSourceStore(docs *DocumentStore) *SourceStore {
	return &SourceStore{
		sources: make(map[string]domain.Source),
		docs:    docs,
	}
}

// Save stores or updates a source.
func (s *SourceStore) Save(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
	return nil
}

// Get retrieves a source by ID.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

// ListByCollection returns all sources in a collection.
func (s *SourceStore) ListByCollection(_ context.Context, collectionID string) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Source
	for _, source := range s.sources {
		if source.CollectionID == collectionID {
			result = append(result, source)
		}
	}
	return result, nil
}

// List returns all configured sources.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		result = append(result, source)
	}
	return result, nil
}

// Delete removes a source, cascading to its documents and chunks.
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.sources[id]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.sources, id)
	s.mu.Unlock()

	if s.docs != nil {
		return s.docs.deleteBySource(ctx, id)
	}
	return nil
}
