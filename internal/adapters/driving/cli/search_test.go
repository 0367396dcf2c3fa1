package cli

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/core/domain"
)

// seedChunk stores a single-chunk document with the given vector.
func seedChunk(t *testing.T, env *testEnv, collectionID, sourceID, path string, vector []float32) {
	t.Helper()

	doc := domain.Document{
		ID:           "doc-" + path,
		SourceID:     sourceID,
		CollectionID: collectionID,
		Path:         path,
		Data:         "body",
	}
	chunks := []domain.Chunk{{
		ID:           "chunk-" + path,
		SourceID:     sourceID,
		CollectionID: collectionID,
		ChunkIndex:   0,
		Context:      path,
		Data:         "body of " + path,
		Vector:       vector,
	}}
	_, err := env.docs.ReplaceDocument(context.Background(), doc, chunks)
	require.NoError(t, err)
}

func TestSearchCmd_RequiresScope(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	// Reset scope flags left over from other tests.
	searchCollection = ""
	searchSource = ""

	_, err := execute(t, "search", "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope is required")
}

func TestSearchCmd_ReturnsRankedResults(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	collectionID := createCollection(t, "docs")
	sourceID := addSource(t, collectionID, t.TempDir())
	// The stub backend embeds "query" as [5]; same-direction vectors
	// score 1 regardless of magnitude.
	seedChunk(t, env, collectionID, sourceID, "match.md", []float32{5})
	seedChunk(t, env, collectionID, sourceID, "zero.md", []float32{0})

	out, err := execute(t, "search", "--collection", collectionID, "query")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "match.md")
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	collectionID := createCollection(t, "docs")

	out, err := execute(t, "search", "--collection", collectionID, "query")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_UnknownCollection(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "search", "--collection", "nope", "query")

	require.Error(t, err)

	var scopeErr *domain.ScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	collectionID := createCollection(t, "docs")
	sourceID := addSource(t, collectionID, t.TempDir())
	seedChunk(t, env, collectionID, sourceID, "match.md", []float32{5})

	out, err := execute(t, "search", "--collection", collectionID, "--json", "query")
	searchJSON = false

	require.NoError(t, err)
	assert.Contains(t, out, "\"Score\"")
	assert.Contains(t, out, "\"Chunk\"")
}

func TestSearchCmd_LimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	old := retrieverService
	retrieverService = nil
	defer func() { retrieverService = old }()

	_, err := execute(t, "search", "--collection", "col", "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSnippet_TruncatesAndStopsAtNewline(t *testing.T) {
	assert.Equal(t, "first line", snippet("first line\nsecond line"))

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, snippet(string(long)), 123)
}

func TestSnippet_CutsOnRuneBoundary(t *testing.T) {
	// "a" offsets every following 3-byte rune so byte 120 lands mid-rune.
	text := "a" + strings.Repeat("界", 60)

	got := snippet(text)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, got, 121)
}
