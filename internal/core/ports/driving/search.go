package driving

import (
	"context"

	"github.com/repovec/repovec/internal/core/domain"
)

// Retriever ranks stored chunks by similarity to a query.
type Retriever interface {
	// Search scores every chunk in scope against the query vector and
	// returns the topK best, highest score first.
	Search(ctx context.Context, query []float32, scope domain.SearchScope, topK int) ([]domain.ScoredChunk, error)

	// SearchText embeds the query text first, then searches.
	SearchText(ctx context.Context, query string, scope domain.SearchScope, topK int) ([]domain.ScoredChunk, error)
}
