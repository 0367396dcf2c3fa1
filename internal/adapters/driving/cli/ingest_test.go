package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_IngestsLocalSource(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.go"), []byte("package x"), 0o644))

	collectionID := createCollection(t, "docs")
	sourceID := addSource(t, collectionID, root)

	out, err := execute(t, "ingest", sourceID)

	require.NoError(t, err)
	assert.Contains(t, out, "Changed: 1")
	assert.Contains(t, out, "unchanged: 0")

	// Second run sees the same checksum and skips.
	out, err = execute(t, "ingest", sourceID)
	require.NoError(t, err)
	assert.Contains(t, out, "Changed: 0")
	assert.Contains(t, out, "unchanged: 1")
}

func TestIngestCmd_UnknownSource(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "ingest", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	old := ingestService
	ingestService = nil
	defer func() { ingestService = old }()

	_, err := execute(t, "ingest", "src-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestDocumentDeleteCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "document", "delete", "nope")

	assert.Error(t, err)
}

func TestWatchCmd_RejectsRemoteSource(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	collectionID := createCollection(t, "docs")
	out, err := execute(t, "source", "add",
		"--collection", collectionID,
		"--owner", "acme",
		"--repo", "handbook",
		"--ext", ".md")
	require.NoError(t, err, out)

	sources, err := catalogService.ListSources(t.Context(), collectionID)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	_, err = execute(t, "watch", sources[0].ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote repository")
}
