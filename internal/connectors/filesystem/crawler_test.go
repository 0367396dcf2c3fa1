package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repovec/repovec/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, files <-chan domain.CrawledFile, errs <-chan error) map[string]string {
	t.Helper()
	got := make(map[string]string)
	for files != nil || errs != nil {
		select {
		case file, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			got[file.Path] = string(file.Data)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			require.NoError(t, err)
		}
	}
	return got
}

func TestCrawler_WalksTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "hello")
	writeFile(t, root, "docs/guide.md", "guide")
	writeFile(t, root, "src/main.go", "package main")
	writeFile(t, root, ".git/config", "hidden")
	writeFile(t, root, ".env", "secret")

	factory := NewFactory()
	crawler, err := factory.Create(context.Background(), domain.Source{ID: "src-1", Repo: root})
	require.NoError(t, err)
	defer crawler.Close()

	require.NoError(t, crawler.Validate(context.Background()))

	files, errs := crawler.Crawl(context.Background())
	got := collect(t, files, errs)

	paths := make([]string, 0, len(got))
	for path := range got {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"README.md", "docs/guide.md", "src/main.go"}, paths)
	assert.Equal(t, "hello", got["README.md"])
}

func TestCrawler_Validate_MissingRoot(t *testing.T) {
	crawler := &Crawler{root: filepath.Join(t.TempDir(), "nope")}

	assert.Error(t, crawler.Validate(context.Background()))
}

func TestCrawler_Validate_FileRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "plain.txt", "x")

	crawler := &Crawler{root: filepath.Join(root, "plain.txt")}

	assert.Error(t, crawler.Validate(context.Background()))
}

func TestFactory_Create_RequiresRoot(t *testing.T) {
	_, err := NewFactory().Create(context.Background(), domain.Source{ID: "src-1"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatcher_EmitsWrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "existing.md", "before")

	watcher, err := NewWatcher(root)
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	files, _ := watcher.Watch(ctx)

	writeFile(t, root, "existing.md", "after")

	select {
	case file := <-files:
		assert.Equal(t, "existing.md", file.Path)
		assert.Equal(t, "after", string(file.Data))
	case <-time.After(5 * time.Second):
		t.Fatal("no event within timeout")
	}
}
