package memory

import (
	"context"
	"sync"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
	sources     *SourceStore
}

// NewCollectionStore creates a new in-memory collection store. The source
// store is consulted on Delete to enforce the empty-collection rule; nil
// disables the check.
func NewCollectionStore(sources *SourceStore) *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]domain.Collection),
		sources:     sources,
	}
}

// Save stores or updates a collection.
func (s *CollectionStore) Save(_ context.Context, collection domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.ID] = collection
	return nil
}

// Get retrieves a collection by ID.
func (s *CollectionStore) Get(_ context.Context, id string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, ok := s.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &collection, nil
}

// List returns all collections.
func (s *CollectionStore) List(_ context.Context) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Collection, 0, len(s.collections))
	for _, collection := range s.collections {
		result = append(result, collection)
	}
	return result, nil
}

// Delete removes an empty collection.
func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	if s.sources != nil {
		remaining, err := s.sources.ListByCollection(ctx, id)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return domain.ErrCollectionNotEmpty
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections, id)
	return nil
}
