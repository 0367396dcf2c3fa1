package github

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/core/domain"
)

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	limiter := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "42")
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateReset, "1700000000")

	limiter.UpdateFromResponse(resp)

	assert.Equal(t, 42, limiter.Remaining())
	assert.Equal(t, 5000, limiter.Limit())
	assert.Equal(t, time.Unix(1700000000, 0), limiter.ResetTime())
}

func TestRateLimiter_UpdateFromResponse_IgnoresGarbage(t *testing.T) {
	limiter := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "not-a-number")

	limiter.UpdateFromResponse(resp)
	limiter.UpdateFromResponse(nil)

	assert.Equal(t, GitHubRateLimit, limiter.Remaining())
}

func TestErrorHelpers(t *testing.T) {
	notFound := &APIError{StatusCode: 404, Message: "missing"}
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(ErrRepoNotFound))
	assert.True(t, IsNotFound(ErrBranchNotFound))
	assert.False(t, IsNotFound(errors.New("other")))

	unauthorized := &APIError{StatusCode: 401}
	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsUnauthorized(notFound))

	rateLimited := &RateLimitError{ResetAt: time.Now()}
	assert.True(t, IsRateLimited(rateLimited))
	assert.False(t, IsRateLimited(notFound))
}

func sourceFixture(branch string) domain.Source {
	return domain.Source{
		ID:     "src-1",
		Owner:  "acme",
		Repo:   "docs",
		Branch: branch,
	}
}

func TestFactory_Create_RequiresCoordinates(t *testing.T) {
	factory := NewFactory("")

	_, err := factory.Create(t.Context(), sourceFixture(""))
	require.Error(t, err)

	crawler, err := factory.Create(t.Context(), sourceFixture("main"))
	require.NoError(t, err)
	assert.NotNil(t, crawler)
	assert.NoError(t, crawler.Close())
}
