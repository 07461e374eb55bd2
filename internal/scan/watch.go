package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle before
// re-evaluating a file.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-evaluates files whenever they change.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger

	// Match decides whether a changed path should be evaluated.
	// Nil accepts every path.
	Match func(path string) bool
}

// Watch observes dirs until ctx is cancelled, calling onResult for every
// created or modified file that Match accepts. Files that disappear before
// they can be read are skipped. onResult is never called concurrently.
func (w *Watcher) Watch(ctx context.Context, dirs []string, onResult func(Result)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		out     = make(chan string)
		done    = make(chan struct{})
	)
	defer close(done)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if w.Match != nil && !w.Match(path) {
				continue
			}
			mu.Lock()
			if t, ok := pending[path]; ok {
				t.Stop()
			}
			pending[path] = time.AfterFunc(debounce, func() {
				mu.Lock()
				delete(pending, path)
				mu.Unlock()
				select {
				case out <- path:
				case <-done:
				}
			})
			mu.Unlock()

		case path := <-out:
			r, err := File(path)
			if err != nil {
				logger.Debug("skipping changed file", "path", path, "error", err)
				continue
			}
			onResult(r)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// WatchDirs returns the distinct parent directories of files.
func WatchDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
