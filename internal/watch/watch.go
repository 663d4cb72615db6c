// Package watch implements a debounced filesystem watch loop over one or
// more source directories, used by the `ddc watch` subcommand to re-parse
// on every edit without re-parsing on every individual write event a
// editor's save-then-fsync dance tends to generate.
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Event is one coalesced change: a source path and the time the debounce
// window closed.
type Event struct {
	Path string
	At   time.Time
}

// Watcher wraps an fsnotify.Watcher, coalescing bursts of events for the
// same path into a single Event after a quiet period.
type Watcher struct {
	fsw    *fsnotify.Watcher
	log    *logrus.Entry
	debounce time.Duration

	events chan Event
	done   chan struct{}
}

// New creates a Watcher over the given root paths, each added directly to
// the underlying fsnotify watcher (fsnotify does not recurse, matching the
// contract of the vfs watcher this is grounded on: the caller is
// responsible for walking a directory tree and adding every subdirectory it
// cares about).
func New(log *logrus.Logger, debounce time.Duration, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	if log == nil {
		log = logrus.New()
	}

	w := &Watcher{
		fsw:      fsw,
		log:      log.WithField("component", "watch"),
		debounce: debounce,
		events:   make(chan Event, 32),
		done:     make(chan struct{}),
	}

	go w.loop()

	return w, nil
}

// Events returns the channel of coalesced change events.
func (w *Watcher) Events() <-chan Event { return w.events }

// Close stops the watch loop and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	pending := make(map[string]*time.Timer)

	fire := make(chan string, 32)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			for _, t := range pending {
				t.Stop()
			}

			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			path := ev.Name

			if t, exists := pending[path]; exists {
				t.Stop()
			}

			pending[path] = time.AfterFunc(w.debounce, func() {
				fire <- path
			})
		case path := <-fire:
			delete(pending, path)
			w.events <- Event{Path: path, At: time.Now()}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.log.WithError(err).Warn("watch error")
		}
	}
}
