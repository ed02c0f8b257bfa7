package internal

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"docsum/extract"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher watches the drop folder and emits file paths once they have
// settled, so half-copied files are not ingested.
type DirWatcher struct {
	dir    string
	settle time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewDirWatcher(dir string, settle time.Duration) *DirWatcher {
	if settle <= 0 {
		settle = 3 * time.Second
	}
	return &DirWatcher{
		dir:      dir,
		settle:   settle,
		logger:   slog.Default(),
		lastSeen: make(map[string]time.Time),
	}
}

func (w *DirWatcher) Watch(ctx context.Context, fileChan chan<- string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching drop folder", "dir", w.dir)

	// pick up files already sitting in the folder
	if entries, err := os.ReadDir(w.dir); err == nil {
		now := time.Now()
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(w.dir, entry.Name())
			if extract.TypeByExtension(path) == "" {
				continue
			}
			w.mark(path, now)
		}
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if extract.TypeByExtension(event.Name) == "" {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.mark(event.Name, time.Now())
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.forget(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		case <-ticker.C:
			for _, path := range w.settled() {
				select {
				case fileChan <- path:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (w *DirWatcher) mark(path string, t time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, seen := w.lastSeen[path]; !seen {
		w.logger.Info("new file detected", "file", path)
	}
	w.lastSeen[path] = t
}

func (w *DirWatcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.lastSeen, path)
}

// settled returns paths that have not changed for the settle window and
// removes them from tracking.
func (w *DirWatcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.lastSeen {
		if time.Since(last) >= w.settle {
			ready = append(ready, path)
			delete(w.lastSeen, path)
		}
	}
	return ready
}
