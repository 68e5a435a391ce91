// Package watch notifies about env-file changes so callers can re-parse
// and re-register the affected source. The parsing engine itself never
// watches anything.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher debounces fsnotify events per file and emits the absolute path
// of each changed file on Changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
	done     chan struct{}

	mu     sync.Mutex
	files  map[string]bool
	timers map[string]*time.Timer
}

func New() (*Watcher, error) {
	return NewWithDebounce(DefaultDebounce)
}

func NewWithDebounce(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		changes:  make(chan string, 4),
		done:     make(chan struct{}),
		files:    map[string]bool{},
		timers:   map[string]*time.Timer{},
	}, nil
}

// Add registers a file. When the file does not exist yet its parent
// directory is watched instead, so a later create still triggers.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}

	target := abs
	if _, err := os.Stat(abs); err != nil {
		target = filepath.Dir(abs)
	}
	if err := w.fsw.Add(target); err != nil {
		return err
	}
	w.files[abs] = true
	return nil
}

// Start begins dispatching. The returned channel carries the absolute
// path of each file that changed, debounced per file.
func (w *Watcher) Start() <-chan string {
	go w.run()
	return w.changes
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if path, ok := w.match(event.Name); ok {
					w.schedule(path)
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// match maps an event path back to a registered file. Editors that save
// via rename emit events for the directory entry, so a basename match on
// a watched directory counts too.
func (w *Watcher) match(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return abs, true
	}
	for f := range w.files {
		if filepath.Base(f) == filepath.Base(abs) && filepath.Dir(f) == filepath.Dir(abs) {
			return f, true
		}
	}
	return "", false
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
