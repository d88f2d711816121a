package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the quiet period for coalescing editor-style
// write-then-rename event bursts on a single key.
const watchDebounce = 50 * time.Millisecond

// Watch streams external change events for keys matching the doublestar
// pattern. Writes issued through this Dir handle are suppressed so callers
// do not react to their own saves.
func (d *Dir) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	events := make(chan Event, 16)
	w := newWatchWorker(d, pattern, events)

	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.Stop(stopCtx)
		close(events)
	}()

	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	store     *Dir
	pattern   string
	events    chan<- Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(store *Dir, pattern string, events chan<- Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("kv-watcher"),
		store:      store,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.store.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.store.Path, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(watchDebounce)
	w.store.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	err := w.loop(ctx)

	// Drain pending debounce timers before the events channel goes away.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			if w.store.config.Logger != nil {
				w.store.config.Logger.Error("fsnotify error", "error", wErr)
			}
		}
	}
}

func (w *watchWorker) handleEvent(ctx context.Context, event fsnotify.Event) {
	key, ok := keyForFile(event.Name)
	if !ok {
		return
	}

	if match, err := doublestar.Match(w.pattern, key); err != nil || !match {
		return
	}

	// Our own atomic writes surface as rename events; skip them so callers
	// only hear about genuinely external mutations.
	if w.store.consumeSelf(key) {
		if w.store.config.Logger != nil {
			w.store.config.Logger.Debug("ignoring self write", "key", key)
		}
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.debouncer.add(Event{
		Type:      eType,
		Key:       key,
		Timestamp: time.Now().Unix(),
	}, func(e Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// keyForFile maps a backing file path to its store key. Temp files and
// foreign files are not keys.
func keyForFile(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, valueExt) {
		return "", false
	}
	return strings.TrimSuffix(name, valueExt), true
}

func mapEventType(event fsnotify.Event) EventType {
	switch {
	case event.Has(fsnotify.Create):
		return EventCreate
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Rename):
		return EventModify
	case event.Has(fsnotify.Remove):
		return EventDelete
	}
	return ""
}

var _ Watchable = (*Dir)(nil)
