package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
	"github.com/repovec/repovec/internal/logger"
)

// maxBlobSize skips files larger than 1MB; the blob API inlines content
// below that bound.
const maxBlobSize = 1024 * 1024

// Ensure the interfaces are implemented.
var (
	_ driven.Crawler        = (*Crawler)(nil)
	_ driven.CrawlerFactory = (*Factory)(nil)
)

// Factory builds GitHub crawlers sharing one API token.
type Factory struct {
	token string
}

// NewFactory creates a crawler factory. The token may be empty for public
// repositories.
func NewFactory(token string) *Factory {
	return &Factory{token: token}
}

// Create returns a crawler for the given source.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Crawler, error) {
	if source.Owner == "" || source.Repo == "" || source.Branch == "" {
		return nil, fmt.Errorf("github: source %s missing owner/repo/branch: %w",
			source.ID, domain.ErrInvalidInput)
	}
	return &Crawler{
		client: NewClient(ctx, f.token),
		source: source,
	}, nil
}

// Crawler walks one repository branch via the tree and blob APIs.
type Crawler struct {
	client *Client
	source domain.Source
}

// Validate checks the repository and branch exist and are reachable with
// the configured credentials.
func (c *Crawler) Validate(ctx context.Context) error {
	if _, err := c.client.GetRepository(ctx, c.source.Owner, c.source.Repo); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s/%s", ErrRepoNotFound, c.source.Owner, c.source.Repo)
		}
		return err
	}
	if _, err := c.client.GetBranch(ctx, c.source.Owner, c.source.Repo, c.source.Branch); err != nil {
		return err
	}
	return nil
}

// Crawl streams every blob reachable from the branch head. The tree is
// fetched in a single recursive call; blob contents follow one request per
// file, throttled by the shared rate limiter.
func (c *Crawler) Crawl(ctx context.Context) (<-chan domain.CrawledFile, <-chan error) {
	files := make(chan domain.CrawledFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		branch, err := c.client.GetBranch(ctx, c.source.Owner, c.source.Repo, c.source.Branch)
		if err != nil {
			errs <- err
			return
		}

		tree, err := c.client.GetTree(ctx, c.source.Owner, c.source.Repo, branch.GetCommit().GetSHA())
		if err != nil {
			errs <- err
			return
		}
		if tree.GetTruncated() {
			logger.Warn("Tree for %s is truncated; some files will be missed", c.source.FullName())
		}

		for _, entry := range tree.Entries {
			if entry.GetType() != "blob" {
				continue
			}
			if entry.GetSize() > maxBlobSize {
				logger.Debug("Skipping %s: %d bytes exceeds blob limit", entry.GetPath(), entry.GetSize())
				continue
			}

			data, err := c.fetchBlob(ctx, entry)
			if err != nil {
				errs <- fmt.Errorf("fetch %s: %w", entry.GetPath(), err)
				return
			}

			select {
			case files <- domain.CrawledFile{Path: entry.GetPath(), Data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return files, errs
}

// fetchBlob downloads and decodes one blob.
func (c *Crawler) fetchBlob(ctx context.Context, entry *gh.TreeEntry) ([]byte, error) {
	blob, err := c.client.GetBlob(ctx, c.source.Owner, c.source.Repo, entry.GetSHA())
	if err != nil {
		return nil, err
	}

	if blob.GetEncoding() == "base64" {
		// The API wraps base64 content in newlines.
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		return base64.StdEncoding.DecodeString(content)
	}
	return []byte(blob.GetContent()), nil
}

// Close releases resources.
func (c *Crawler) Close() error {
	return nil
}
