package driven

import "context"

// EmbeddingBackend turns batches of text into fixed-length vectors.
// The pipeline is indifferent to whether the implementation is a remote API
// or a local model; it only requires positional alignment between input
// texts and output vectors, and a fixed dimensionality per deployment.
//
// Backends classify their failures with *domain.EmbeddingError so the
// embed client knows what to retry.
type EmbeddingBackend interface {
	// EmbedBatch generates embeddings for the given texts, aligned
	// positionally with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// MaxBatchSize returns the largest batch the backend accepts per call.
	MaxBatchSize() int

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
