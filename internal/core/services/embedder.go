package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/logger"
)

// Default embedding client tuning.
const (
	DefaultEmbedConcurrency = 4
	DefaultEmbedRetries     = 3
	DefaultEmbedBackoff     = 500 * time.Millisecond
	fallbackBatchSize       = 32
)

// EmbedConfig tunes the embedding client.
type EmbedConfig struct {
	// Concurrency bounds the number of in-flight batches.
	Concurrency int

	// MaxRetries is the number of retries after the first attempt of a
	// transient failure.
	MaxRetries int

	// Backoff is the base delay between retries; it doubles per attempt.
	Backoff time.Duration
}

// EmbedClient adapts a pluggable embedding backend for the pipeline.
// It batches texts up to the backend's maximum batch size, runs batches
// concurrently up to a configured limit, restores positional ordering in
// the result, and retries transient failures with exponential backoff.
type EmbedClient struct {
	backend driven.EmbeddingBackend
	cfg     EmbedConfig
}

// NewEmbedClient wraps a backend with batching, concurrency and retry.
func NewEmbedClient(backend driven.EmbeddingBackend, cfg EmbedConfig) *EmbedClient {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultEmbedConcurrency
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultEmbedRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultEmbedBackoff
	}
	return &EmbedClient{backend: backend, cfg: cfg}
}

// Dimensions returns the backend's vector size.
func (c *EmbedClient) Dimensions() int {
	return c.backend.Dimensions()
}

// Ping checks the backend is reachable.
func (c *EmbedClient) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// EmbedOne embeds a single text, used for retrieval queries.
func (c *EmbedClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Embed generates one vector per input text, aligned positionally even
// though batches may complete out of order. A batch that exhausts its
// retries fails the whole call; the caller decides the blast radius (for
// ingestion that is one document, never the run).
func (c *EmbedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batchSize := c.backend.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = fallbackBatchSize
	}

	out := make([][]float32, len(texts))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, c.cfg.Concurrency)
	errCh := make(chan error, (len(texts)/batchSize)+1)
	var wg sync.WaitGroup

	// drain settles in-flight batches and yields the first batch error.
	drain := func() error {
		wg.Wait()
		close(errCh)
		return <-errCh
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// A failed batch cancels the dispatch; its classified error,
			// not the cancellation, is the cause the caller must see.
			if err := drain(); err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(start int, batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			vectors, err := c.embedBatch(ctx, batch)
			if err != nil {
				errCh <- err
				cancel()
				return
			}
			// Disjoint offsets per batch, no locking needed.
			copy(out[start:], vectors)
		}(start, texts[start:end])
	}

	if err := drain(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedBatch calls the backend once per attempt, retrying transient
// failures with exponential backoff.
func (c *EmbedClient) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.Backoff << (attempt - 1)
			logger.Debug("Retrying embedding batch (attempt %d) after %v: %v", attempt+1, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		vectors, err := c.backend.EmbedBatch(ctx, batch)
		if err == nil {
			if len(vectors) != len(batch) {
				return nil, &domain.EmbeddingError{
					Err: fmt.Errorf("backend returned %d vectors for %d texts", len(vectors), len(batch)),
				}
			}
			return vectors, nil
		}

		lastErr = err
		var embErr *domain.EmbeddingError
		if !errors.As(err, &embErr) || !embErr.Transient {
			// Permanent failures are not retried.
			return nil, err
		}
	}
	return nil, fmt.Errorf("embedding batch after %d retries: %w", c.cfg.MaxRetries, lastErr)
}
