// Command repovec indexes source repositories into a local catalog and
// serves scoped similarity search over the result.
package main

import (
	"fmt"
	"os"

	"github.com/repovec/repovec/internal/adapters/driven/config/file"
	"github.com/repovec/repovec/internal/adapters/driven/embedding/ollama"
	"github.com/repovec/repovec/internal/adapters/driven/embedding/openai"
	"github.com/repovec/repovec/internal/adapters/driven/storage/sqlite"
	"github.com/repovec/repovec/internal/adapters/driving/cli"
	"github.com/repovec/repovec/internal/chunker"
	"github.com/repovec/repovec/internal/connectors"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/core/services"
)

func main() {
	cli.SetInitializer(wire)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the services from the configuration file. It runs after
// flag parsing so --config is honoured.
func wire() error {
	cfg, err := file.Load(cli.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	backend, err := newEmbeddingBackend(cfg.Embedding)
	if err != nil {
		return err
	}

	embedder := services.NewEmbedClient(backend, services.EmbedConfig{
		Concurrency: cfg.Ingest.EmbedConcurrency,
		MaxRetries:  cfg.Ingest.EmbedRetries,
	})
	splitter := chunker.New(
		chunker.WithMaxTokens(cfg.Chunking.MaxTokens),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	crawlers := connectors.NewFactory(cfg.GitHub.Token)

	collections := store.CollectionStore()
	sources := store.SourceStore()
	docs := store.DocumentStore()

	cli.SetServices(
		services.NewCatalogService(collections, sources, docs),
		services.NewIngestCoordinator(sources, docs, crawlers, embedder, splitter, cfg.Ingest.Workers),
		services.NewRetrieverService(collections, sources, docs, embedder),
	)
	return nil
}

// newEmbeddingBackend builds the configured embedding backend.
func newEmbeddingBackend(cfg file.EmbeddingConfig) (driven.EmbeddingBackend, error) {
	switch cfg.Backend {
	case file.BackendOllama, "":
		return ollama.NewEmbeddingBackend(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout(),
			Dimensions: cfg.Dimensions,
		}), nil

	case file.BackendOpenAI:
		backend, err := openai.NewEmbeddingBackend(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout(),
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("configure openai backend: %w", err)
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}
