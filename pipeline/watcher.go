package pipeline

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/YoungY620/ingest/core/logging"
)

// Watcher calls onChange once a burst of writes to the watched files settles.
// Directories are watched rather than files so editors that replace a file
// by rename keep triggering.
type Watcher struct {
	debounceMs, maxWaitMs int
	files                 map[string]struct{}
	onChange              func([]string)
	watcher               *fsnotify.Watcher
	log                   logging.Printer

	mu                sync.Mutex
	pending           map[string]struct{}
	debounce, maxWait *time.Timer
	closed            bool
	sem               chan struct{} // capacity 1: at most one onChange at a time
}

func NewWatcher(paths []string, debounceMs, maxWaitMs int, log logging.Printer, onChange func([]string)) (*Watcher, error) {
	if log == nil {
		log = logging.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		debounceMs: debounceMs,
		maxWaitMs:  maxWaitMs,
		files:      make(map[string]struct{}, len(paths)),
		onChange:   onChange,
		watcher:    fsw,
		log:        log,
		pending:    make(map[string]struct{}),
		sem:        make(chan struct{}, 1),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Trigger schedules a run as if every watched file had changed.
func (w *Watcher) Trigger() {
	for f := range w.files {
		w.add(f)
	}
}

func (w *Watcher) watched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	_, ok := w.files[abs]
	return abs, ok
}

// Run processes file system events until Close is called.
func (w *Watcher) Run() error {
	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			file, ok := w.watched(e.Name)
			if !ok {
				continue
			}
			w.log.Debugf("Event: %s %s", e.Op, e.Name)
			// Removal alone leaves nothing to read; the recreate event follows.
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.add(file)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.log.Errorf("Watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) add(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	first := len(w.pending) == 0
	w.pending[file] = struct{}{}

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(time.Duration(w.debounceMs)*time.Millisecond, w.Flush)

	// Bound the total delay of a continuous stream of writes.
	if first {
		w.maxWait = time.AfterFunc(time.Duration(w.maxWaitMs)*time.Millisecond, w.Flush)
	}
}

// Flush hands pending files to onChange. When a run is already in progress
// the files stay pending and the flush is retried after another debounce.
func (w *Watcher) Flush() {
	select {
	case w.sem <- struct{}{}:
	default:
		w.log.Debugf("Run in progress, deferring flush")
		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.debounce = time.AfterFunc(time.Duration(w.debounceMs)*time.Millisecond, w.Flush)
		w.mu.Unlock()
		return
	}
	defer func() { <-w.sem }()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	if w.maxWait != nil {
		w.maxWait.Stop()
		w.maxWait = nil
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	closed := w.closed
	w.mu.Unlock()

	if !closed && len(files) > 0 && w.onChange != nil {
		sort.Strings(files)
		w.onChange(files)
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.debounce != nil {
		w.debounce.Stop()
	}
	if w.maxWait != nil {
		w.maxWait.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// Wait blocks until an in-flight onChange returns. Called after Close, no
// further onChange can start.
func (w *Watcher) Wait() {
	w.sem <- struct{}{}
	<-w.sem
}
