package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/adapters/driven/storage/memory"
	"github.com/repovec/repovec/internal/chunker"
	"github.com/repovec/repovec/internal/connectors/filesystem"
	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/services"
)

// stubBackend embeds every text as a one-dimensional vector of its length.
type stubBackend struct{}

func (stubBackend) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text))}
	}
	return vectors, nil
}

func (stubBackend) MaxBatchSize() int { return 16 }
func (stubBackend) Dimensions() int   { return 1 }
func (stubBackend) ModelName() string { return "stub" }

func (stubBackend) Ping(context.Context) error { return nil }
func (stubBackend) Close() error               { return nil }

// testEnv bundles the in-memory wiring behind the commands.
type testEnv struct {
	docs *memory.DocumentStore
}

// setupTestServices wires the commands to in-memory services and returns
// a cleanup restoring the previous wiring.
func setupTestServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	docs := memory.NewDocumentStore()
	sources := memory.NewSourceStore(docs)
	collections := memory.NewCollectionStore(sources)

	embedder := services.NewEmbedClient(stubBackend{}, services.EmbedConfig{})
	catalog := services.NewCatalogService(collections, sources, docs)
	retriever := services.NewRetrieverService(collections, sources, docs, embedder)
	ingestor := services.NewIngestCoordinator(
		sources, docs, filesystem.NewFactory(), embedder, chunker.New(), 0)

	oldCatalog, oldIngest, oldRetriever := catalogService, ingestService, retrieverService
	SetServices(catalog, ingestor, retriever)

	return &testEnv{docs: docs}, func() {
		SetServices(oldCatalog, oldIngest, oldRetriever)
	}
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// createCollection makes a collection through the command and returns its ID.
func createCollection(t *testing.T, name string) string {
	t.Helper()

	_, err := execute(t, "collection", "create", name)
	require.NoError(t, err)

	collections, err := catalogService.ListCollections(context.Background())
	require.NoError(t, err)
	for _, c := range collections {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("collection %s not found after create", name)
	return ""
}

// addSource registers a local directory source and returns its ID.
func addSource(t *testing.T, collectionID, root string) string {
	t.Helper()

	source, err := catalogService.AddSource(context.Background(), domain.Source{
		CollectionID: collectionID,
		Repo:         root,
		Branch:       "main",
		AllowedExt:   []string{".md"},
	})
	require.NoError(t, err)
	return source.ID
}
