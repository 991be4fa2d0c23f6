// Package watch reloads the board when its data files change on disk, for
// example when a second process checks someone in or a file is hand-edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events one save produces.
const DefaultDebounce = 250 * time.Millisecond

// ChangeEvent represents a filesystem change.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// dataPatterns are the store files worth reacting to. Temp files from atomic
// saves, logs and the audit trail are ignored.
var dataPatterns = []string{"*.yaml", "*.db", "*.sqlite"}

// IsDataFile reports whether path is one of the board's store files.
func IsDataFile(path string) bool {
	base := filepath.Base(path)
	for _, p := range dataPatterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// FSWatcher watches the data directory and reports debounced batches of changes.
type FSWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func([]ChangeEvent)

	mu      sync.Mutex
	pending map[string]ChangeEvent
	timer   *time.Timer
}

// NewFSWatcher creates a watcher on dir. A zero debounce uses DefaultDebounce.
func NewFSWatcher(dir string, debounce time.Duration, onChange func([]ChangeEvent)) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &FSWatcher{
		watcher:  w,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]ChangeEvent),
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *FSWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !IsDataFile(event.Name) {
				continue
			}
			w.queue(ChangeEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// queue records the change and restarts the debounce window.
func (w *FSWatcher) queue(e ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[e.Path] = e
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *FSWatcher) flush() {
	w.mu.Lock()
	batch := make([]ChangeEvent, 0, len(w.pending))
	for _, e := range w.pending {
		batch = append(batch, e)
	}
	w.pending = make(map[string]ChangeEvent)
	w.mu.Unlock()

	if len(batch) == 0 || w.onChange == nil {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	w.onChange(batch)
}

func (w *FSWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}

// PublishChanges returns a change handler that announces store.changed.
func PublishChanges(pub events.EventPublisher) func([]ChangeEvent) {
	return func(batch []ChangeEvent) {
		files := make([]string, 0, len(batch))
		for _, c := range batch {
			files = append(files, filepath.Base(c.Path))
		}
		_ = pub.Publish(events.NewEvent(events.EventTypeStoreChanged, events.AggregateTypeStore, "", "watch",
			map[string]interface{}{"files": files}))
	}
}
