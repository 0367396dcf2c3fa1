package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogManager = (*CatalogService)(nil)

// CatalogService exposes collection and source lifecycle operations.
type CatalogService struct {
	collections driven.CollectionStore
	sources     driven.SourceStore
	docs        driven.DocumentStore
}

// NewCatalogService creates a catalog service.
func NewCatalogService(
	collections driven.CollectionStore,
	sources driven.SourceStore,
	docs driven.DocumentStore,
) *CatalogService {
	return &CatalogService{
		collections: collections,
		sources:     sources,
		docs:        docs,
	}
}

// CreateCollection creates a named collection.
func (s *CatalogService) CreateCollection(ctx context.Context, name string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name: %w", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	collection := domain.Collection{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collections.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("save collection: %w", err)
	}
	return &collection, nil
}

// ListCollections returns all collections.
func (s *CatalogService) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.collections.List(ctx)
}

// DeleteCollection removes a collection. The caller must delete its
// sources first; the store refuses with ErrCollectionNotEmpty otherwise.
func (s *CatalogService) DeleteCollection(ctx context.Context, id string) error {
	return s.collections.Delete(ctx, id)
}

// AddSource registers a repository under a collection. The filter rules
// are compiled once up front so malformed rules surface at registration
// rather than mid-run. Owner may be empty for local directory sources.
func (s *CatalogService) AddSource(ctx context.Context, source domain.Source) (*domain.Source, error) {
	if source.Repo == "" || source.Branch == "" {
		return nil, fmt.Errorf("source repo/branch: %w", domain.ErrInvalidInput)
	}
	if _, err := s.collections.Get(ctx, source.CollectionID); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if _, err := domain.NewPathFilter(&source); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	source.ID = uuid.New().String()
	source.CreatedAt = now
	source.UpdatedAt = now
	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}
	return &source, nil
}

// ListSources returns sources, optionally scoped to a collection.
func (s *CatalogService) ListSources(ctx context.Context, collectionID string) ([]domain.Source, error) {
	if collectionID == "" {
		return s.sources.List(ctx)
	}
	return s.sources.ListByCollection(ctx, collectionID)
}

// DeleteSource removes a source, cascading to its documents and chunks.
func (s *CatalogService) DeleteSource(ctx context.Context, id string) error {
	return s.sources.Delete(ctx, id)
}

// DeleteDocument removes one document, cascading to its chunks.
func (s *CatalogService) DeleteDocument(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}
