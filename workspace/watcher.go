package workspace

import (
	"context"
	"os"
	"sync"
	"time"
)

// FileWatcher rescans a workspace whenever template files change on
// disk. OnChange is called with the new document, or with a nil
// document when the file went away.
type FileWatcher struct {
	ws           *Workspace
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time

	OnChange func(path string, doc *Document)
}

func NewFileWatcher(ws *Workspace, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		ws:           ws,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *FileWatcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan(ctx)
		}
	}
}

// Scan performs a single polling pass. It is not safe to call
// concurrently with a started watcher.
func (w *FileWatcher) Scan(ctx context.Context) {
	paths, err := Discover(ctx, w.ws.Root(), w.ws.Config())
	if err != nil {
		w.ws.log.Warning("watch scan failed", "root", w.ws.Root(), "error", err)
		return
	}

	current := make(map[string]bool, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = true

		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			continue
		}
		w.modTimes[path] = info.ModTime()
		doc, err := w.ws.ScanFile(path)
		if err != nil {
			w.ws.log.Warning("rescan failed", "path", path, "error", err)
			continue
		}
		w.notify(path, doc)
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.ws.RemoveFile(path)
			w.notify(path, nil)
		}
	}
}

func (w *FileWatcher) notify(path string, doc *Document) {
	if w.OnChange != nil {
		w.OnChange(path, doc)
	}
}
