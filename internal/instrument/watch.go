package instrument

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay coalesces the burst of events an editor produces on save.
const DefaultDebounceDelay = 100 * time.Millisecond

// Watcher reports changes to a fixed set of instrument files. It watches
// their parent directories so atomic saves (write temp, rename over) are
// seen as changes to the original path.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	changes chan string
	errors  chan error
	done    chan struct{}

	mu            sync.Mutex
	debounceDelay time.Duration
	pending       map[string]*time.Timer
	closed        bool
}

// NewWatcher starts watching paths.
func NewWatcher(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:       fsw,
		files:         make(map[string]bool, len(paths)),
		changes:       make(chan string, 16),
		errors:        make(chan error, 4),
		done:          make(chan struct{}),
		debounceDelay: DefaultDebounceDelay,
		pending:       make(map[string]*time.Timer),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go w.run()
	return w, nil
}

// SetDebounceDelay must be called before any change is expected.
func (w *Watcher) SetDebounceDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = d
}

// Changes delivers the absolute path of each changed file.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Errors delivers watcher errors. Errors are dropped when nobody reads them.
func (w *Watcher) Errors() <-chan error { return w.errors }

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if w.files[filepath.Clean(ev.Name)] {
				w.debounce(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.changes <- path:
		case <-w.done:
		}
	})
}

// Close stops the watcher. Pending changes are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
