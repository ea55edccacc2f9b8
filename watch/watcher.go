package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gitgeistai/gitgeist-ai/utils"
)

// Watcher bridges fsnotify to the aggregator: it maps raw notifications to
// events, filters ignored paths, and keeps newly created directories under
// watch. Event delivery never blocks on extraction; the aggregator only
// mutates its pending set on this path.
type Watcher struct {
	fs      *fsnotify.Watcher
	agg     *Aggregator
	root    string
	ignored []string
}

// NewWatcher prepares a recursive watcher over root feeding the aggregator.
// Ignore patterns come from the built-in defaults plus .gitgeist-ignore.
func NewWatcher(root string, agg *Aggregator) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	patterns, err := utils.GetIgnorePatterns(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{fs: fsw, agg: agg, root: root, ignored: patterns}, nil
}

// Start registers every directory under root and begins dispatching events
// until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to register watch paths: %w", err)
	}

	go w.loop(ctx)
	log.Printf("Watching %s", w.root)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.shouldIgnore(ev.Name) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// New directories join the watch; their files arrive as
			// separate create events.
			if err := w.fs.Add(ev.Name); err != nil {
				log.Printf("Warning: cannot watch new directory %s: %v", ev.Name, err)
			}
			return
		}
		w.agg.Observe(Event{Path: ev.Name, Kind: EventCreated})

	case ev.Op.Has(fsnotify.Write):
		w.agg.Observe(Event{Path: ev.Name, Kind: EventModified})

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.agg.Observe(Event{Path: ev.Name, Kind: EventDeleted})
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return utils.IsDefaultIgnored(rel) || utils.IsIgnored(rel, w.ignored)
}

// Stop closes the notification stream and cancels the aggregator's timer.
func (w *Watcher) Stop() error {
	err := w.fs.Close()
	w.agg.Close()
	return err
}
