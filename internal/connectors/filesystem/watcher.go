package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/logger"
)

// Watcher streams files as they are created or modified under a root
// directory. The stream plugs into the ingestion pipeline as a scoped,
// non-pruning run.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
}

// NewWatcher creates a recursive watcher over the root directory.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: create watcher: %w", err)
	}

	w := &Watcher{root: root, watcher: fsw}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Watch emits a CrawledFile for every created or written file until the
// context is cancelled. New directories are picked up as they appear.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.CrawledFile, <-chan error) {
	files := make(chan domain.CrawledFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}

				info, err := os.Stat(event.Name)
				if err != nil {
					// Deleted or renamed between event and stat.
					continue
				}
				if info.IsDir() {
					if event.Op&fsnotify.Create != 0 {
						if err := w.addRecursive(event.Name); err != nil {
							logger.Warn("Failed to watch new directory %s: %v", event.Name, err)
						}
					}
					continue
				}
				if isHidden(filepath.Base(event.Name)) {
					continue
				}

				rel, err := filepath.Rel(w.root, event.Name)
				if err != nil {
					continue
				}
				data, err := os.ReadFile(event.Name)
				if err != nil {
					continue
				}

				select {
				case files <- domain.CrawledFile{Path: filepath.ToSlash(rel), Data: data}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				errs <- fmt.Errorf("filesystem: watch: %w", err)
				return
			}
		}
	}()

	return files, errs
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// addRecursive watches a directory and every non-hidden subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(d.Name()) && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("filesystem: watch %s: %w", path, err)
		}
		return nil
	})
}
