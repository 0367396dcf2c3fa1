// Package filesystem crawls files from a local directory tree. It backs
// local ingestion and the watch mode that re-ingests files as they change.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// Ensure the interfaces are implemented.
var (
	_ driven.Crawler        = (*Crawler)(nil)
	_ driven.CrawlerFactory = (*Factory)(nil)
)

// Factory builds filesystem crawlers.
type Factory struct{}

// NewFactory creates a crawler factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns a crawler rooted at the source's repo path.
func (f *Factory) Create(_ context.Context, source domain.Source) (driven.Crawler, error) {
	if source.Repo == "" {
		return nil, fmt.Errorf("filesystem: source %s has no root path: %w",
			source.ID, domain.ErrInvalidInput)
	}
	return &Crawler{root: source.Repo}, nil
}

// Crawler walks a directory tree and yields every regular file, with paths
// relative to the root in slash form.
type Crawler struct {
	root string
}

// Validate checks the root exists and is a directory.
func (c *Crawler) Validate(_ context.Context) error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("filesystem: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("filesystem: root %s is not a directory", c.root)
	}
	return nil
}

// Crawl streams every regular file under the root. Hidden directories
// (".git" and friends) are skipped.
func (c *Crawler) Crawl(ctx context.Context) (<-chan domain.CrawledFile, <-chan error) {
	files := make(chan domain.CrawledFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if d.IsDir() {
				if isHidden(d.Name()) && path != c.root {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || isHidden(d.Name()) {
				return nil
			}

			rel, err := filepath.Rel(c.root, path)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			select {
			case files <- domain.CrawledFile{Path: filepath.ToSlash(rel), Data: data}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errs <- fmt.Errorf("filesystem: walk: %w", err)
		}
	}()

	return files, errs
}

// Close releases resources.
func (c *Crawler) Close() error {
	return nil
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
