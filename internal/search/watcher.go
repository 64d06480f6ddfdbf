package search

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Invalidator is notified when pages change on disk.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates an index when page files under root change outside the
// web handlers, for example after a git pull into the content directory.
type Watcher struct {
	root    string
	ext     string
	target  Invalidator
	logger  interfaces.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWatcher creates a watcher for page files with extension ext under root.
func NewWatcher(root, ext string, target Invalidator, logger interfaces.Logger) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("search: watcher target is required")
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    root,
		ext:     ext,
		target:  target,
		logger:  logger,
		watcher: fsw,
		done:    make(chan struct{}),
	}, nil
}

// Start registers every directory under root and processes events until ctx
// is cancelled or Close is called. It returns once the watches are in place.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	go w.run(ctx)
	w.logger.Info("watcher.started", "root", w.root)
	return nil
}

// Close stops the event loop and releases the fsnotify handle.
func (w *Watcher) Close() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.done
	}
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher.error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watcher.add_failed", "path", event.Name, "error", err)
			}
			// Files may have landed before the watch was added.
			w.target.Invalidate()
			return
		}
	}

	if !strings.HasSuffix(event.Name, w.ext) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("watcher.page_changed", "path", event.Name, "op", event.Op.String())
	w.target.Invalidate()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
}
