package wgsl

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/fsnotify/fsnotify"
)

// Change is a shader file whose contents changed on disk.
type Change struct {
	Path   string
	Source string
}

// Watcher reports edits to shader files so they can be recompiled between frames.
// Events are collected on a background goroutine; the render loop drains them with Changes.
type Watcher struct {
	w       *fsnotify.Watcher
	mu      sync.Mutex
	files   map[string]bool
	pending map[string]bool
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts a watcher with no files.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		w:       fw,
		files:   make(map[string]bool),
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add starts watching a file. The parent directory is watched so that editors which
// replace files on save are still observed.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()
	return nil
}

// Changes returns the watched files modified since the last call, with their new contents.
// Files that cannot be read are logged and skipped.
func (w *Watcher) Changes() []Change {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	w.mu.Unlock()

	var out []Change
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			common.Logger().Warn("failed to reload shader", "path", p, "err", err)
			continue
		}
		out = append(out, Change{Path: p, Source: string(data)})
	}
	return out
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.w.Close()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if w.files[abs] {
				w.pending[abs] = true
			}
			w.mu.Unlock()
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("shader watcher error", "err", err)
		}
	}
}
