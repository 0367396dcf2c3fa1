package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/core/ports/driving"
	"github.com/repovec/repovec/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService ranks stored chunks by cosine similarity to a query
// vector. Every in-scope chunk is scored exactly; no approximate pruning.
type RetrieverService struct {
	collections driven.CollectionStore
	sources     driven.SourceStore
	docs        driven.DocumentStore
	embedder    *EmbedClient
}

// NewRetrieverService creates a retriever. The embedder is only required
// for SearchText; Search with a pre-computed vector works without it.
func NewRetrieverService(
	collections driven.CollectionStore,
	sources driven.SourceStore,
	docs driven.DocumentStore,
	embedder *EmbedClient,
) *RetrieverService {
	return &RetrieverService{
		collections: collections,
		sources:     sources,
		docs:        docs,
		embedder:    embedder,
	}
}

// SearchText embeds the query text and searches with the resulting vector.
func (r *RetrieverService) SearchText(
	ctx context.Context, query string, scope domain.SearchScope, topK int,
) ([]domain.ScoredChunk, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("text search: %w", domain.ErrInvalidInput)
	}
	vector, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.Search(ctx, vector, scope, topK)
}

// Search scores every chunk inside the scope against the query vector and
// returns the topK best, highest score first. Ties break by ascending
// chunk index within a document, then by document id.
func (r *RetrieverService) Search(
	ctx context.Context, query []float32, scope domain.SearchScope, topK int,
) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top-k must be positive: %w", domain.ErrInvalidInput)
	}
	if err := r.validateScope(ctx, scope); err != nil {
		return nil, err
	}

	chunks, err := r.docs.ChunksByScope(ctx, scope)
	if err != nil {
		return nil, &domain.StorageError{Op: "chunks by scope", Err: err}
	}
	if len(chunks) == 0 {
		// Valid but empty scope is not an error.
		return []domain.ScoredChunk{}, nil
	}

	logger.Debug("Scoring %d chunks in scope (collection=%q source=%q)",
		len(chunks), scope.CollectionID, scope.SourceID)

	// Memoise the query magnitude; it is shared across all candidates.
	queryMag := magnitude(query)

	scored := make([]domain.ScoredChunk, len(chunks))
	for i, chunk := range chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: chunk,
			Score: cosine(query, chunk.Vector, queryMag),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		ci, cj := &scored[i].Chunk, &scored[j].Chunk
		if ci.DocumentID != cj.DocumentID {
			return ci.DocumentID < cj.DocumentID
		}
		return ci.ChunkIndex < cj.ChunkIndex
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// validateScope rejects empty scopes and scopes referencing missing
// entities with a ScopeError.
func (r *RetrieverService) validateScope(ctx context.Context, scope domain.SearchScope) error {
	if scope.Empty() {
		return &domain.ScopeError{Reason: "no collection or source given"}
	}

	if scope.CollectionID != "" {
		if _, err := r.collections.Get(ctx, scope.CollectionID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ScopeError{Reason: "collection " + scope.CollectionID + " does not exist"}
			}
			return &domain.StorageError{Op: "get collection", Err: err}
		}
	}

	if scope.SourceID != "" {
		source, err := r.sources.Get(ctx, scope.SourceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ScopeError{Reason: "source " + scope.SourceID + " does not exist"}
			}
			return &domain.StorageError{Op: "get source", Err: err}
		}
		if scope.CollectionID != "" && source.CollectionID != scope.CollectionID {
			return &domain.ScopeError{Reason: "source " + scope.SourceID + " is not in collection " + scope.CollectionID}
		}
	}
	return nil
}

// cosine computes cosine similarity between the query and a candidate,
// reusing the query's precomputed magnitude.
func cosine(query, candidate []float32, queryMag float32) float32 {
	if queryMag == 0 {
		return 0
	}
	candMag := magnitude(candidate)
	if candMag == 0 {
		return 0
	}

	n := len(query)
	if len(candidate) < n {
		n = len(candidate)
	}
	var dot float32
	for i := 0; i < n; i++ {
		dot += query[i] * candidate[i]
	}
	return dot / (queryMag * candMag)
}

// magnitude returns the Euclidean norm of a vector.
func magnitude(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
