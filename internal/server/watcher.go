package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the burst of events an editor save produces into
// one rebuild.
const debounceWindow = 300 * time.Millisecond

// Watcher observes the example source directories and invokes OnChange
// after a debounced burst of filesystem events. Generated output must be
// excluded or every rebuild would trigger the next one.
type Watcher struct {
	Dirs []string
	// Exclude returns true for directories that must not be watched
	// (generated output, image dirs, VCS metadata).
	Exclude  func(path string) bool
	OnChange func(ctx context.Context)
}

// Run blocks until the context is cancelled. Rebuilds are serialized; a
// change arriving during a rebuild queues exactly one follow-up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.Dirs {
		if err := w.addRecursive(fsw, dir); err != nil {
			return err
		}
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := w.debouncer(rebuildReq)
	go w.rebuildLoop(ctx, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.Exclude != nil && w.Exclude(event.Name) {
				continue
			}
			// New directories need to join the watch set.
			if event.Op.Has(fsnotify.Create) {
				_ = w.addRecursive(fsw, event.Name)
			}
			slog.Debug("Source change detected", "path", event.Name, "op", event.Op.String())
			trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between event and walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if w.Exclude != nil && w.Exclude(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) debouncer(rebuildReq chan struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

func (w *Watcher) rebuildLoop(ctx context.Context, rebuildReq chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			w.OnChange(ctx)
		}
	}
}
