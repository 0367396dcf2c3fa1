package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/connectors/filesystem"
	"github.com/repovec/repovec/internal/connectors/github"
	"github.com/repovec/repovec/internal/core/domain"
)

func TestFactory_DispatchesByOwner(t *testing.T) {
	factory := NewFactory("")

	remote, err := factory.Create(t.Context(), domain.Source{
		ID: "src-1", Owner: "acme", Repo: "docs", Branch: "main",
	})
	require.NoError(t, err)
	assert.IsType(t, &github.Crawler{}, remote)
	assert.NoError(t, remote.Close())

	local, err := factory.Create(t.Context(), domain.Source{
		ID: "src-2", Repo: t.TempDir(),
	})
	require.NoError(t, err)
	assert.IsType(t, &filesystem.Crawler{}, local)
	assert.NoError(t, local.Close())
}

func TestFactory_PropagatesValidationErrors(t *testing.T) {
	factory := NewFactory("")

	_, err := factory.Create(t.Context(), domain.Source{ID: "src-1", Owner: "acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = factory.Create(t.Context(), domain.Source{ID: "src-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
