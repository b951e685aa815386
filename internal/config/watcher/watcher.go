// Package watcher reports changes to the settings file and layout files
// so they can be reloaded while the keyboard is in use.
//
// Files are watched through their parent directories, which keeps a watch
// alive across editors that save by writing a temporary file and renaming
// it over the original. Bursts of events on one file are debounced into a
// single Event.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"k8s.io/utils/clock"

	"github.com/dshills/physkey/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Event is a debounced change to one watched file.
type Event struct {
	// Path is absolute.
	Path string
	Op   Operation
	// Time is when the last raw event of the burst arrived.
	Time time.Time
}

// Operation is what happened to the file.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

var operationNames = [...]string{
	OpWrite:  "write",
	OpCreate: "create",
	OpRemove: "remove",
	OpRename: "rename",
}

func (op Operation) String() string {
	if op < 0 || int(op) >= len(operationNames) {
		return "unknown"
	}
	return operationNames[op]
}

// operationOf maps an fsnotify op to an Operation. Chmod-only events are
// dropped.
func operationOf(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	}
	return 0, false
}

// coalesce folds the next raw operation into a pending one. A remove wins,
// a create keeps its meaning through later writes, and a file that is
// removed or renamed away and then created again was rewritten.
func coalesce(pending, next Operation) Operation {
	switch next {
	case OpCreate:
		if pending == OpRemove || pending == OpRename {
			return OpWrite
		}
	case OpWrite:
		return pending
	}
	return next
}

// Handler receives change events. Handlers run on a timer goroutine, or
// on the watch goroutine when debouncing is off.
type Handler func(event Event)

type pendingEvent struct {
	Event
	seq uint64
}

// Watcher watches a set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	clock    clock.Clock
	logger   *logging.Logger
	debounce time.Duration

	mu       sync.RWMutex
	files    map[string]string // file -> directory
	dirs     map[string]int    // directory -> watched files in it
	handlers []Handler
	done     chan struct{}
	wg       sync.WaitGroup
	running  bool

	pendingMu sync.Mutex
	pending   map[string]pendingEvent
	seq       uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before its change is
// reported. Zero reports every raw event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock replaces the real clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// New creates a watcher. Nothing is delivered until Start.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	w := &Watcher{
		fsw:      fsw,
		clock:    clock.RealClock{},
		logger:   logging.NullLogger,
		debounce: DefaultDebounce,
		files:    make(map[string]string),
		dirs:     make(map[string]int),
		pending:  make(map[string]pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")
	return w, nil
}

// Watch adds path. The file may not exist yet but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
	}
	w.dirs[dir]++
	w.files[abs] = dir
	return nil
}

// Unwatch removes path. Unknown paths are ignored.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	dir, ok := w.files[abs]
	if !ok {
		return nil
	}
	delete(w.files, abs)
	if w.dirs[dir]--; w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	return errors.Wrapf(w.fsw.Remove(dir), "unwatching %s", dir)
}

// OnChange adds a handler.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, handler)
	w.mu.Unlock()
}

// Start begins delivering events. Starting a running watcher does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.watch(w.done)
}

// Stop stops delivery and drops changes still waiting out the debounce.
// The watcher can be started again.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()
	w.wg.Wait()

	w.pendingMu.Lock()
	clear(w.pending)
	w.pendingMu.Unlock()
}

// Close stops the watcher and releases its file descriptors.
func (w *Watcher) Close() error {
	w.Stop()
	return w.fsw.Close()
}

func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedFiles returns the watched paths in no particular order.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	files := make([]string, 0, len(w.files))
	for p := range w.files {
		files = append(files, p)
	}
	return files
}

func (w *Watcher) watch(done <-chan struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

// handle narrows directory events down to the watched files.
func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := operationOf(ev.Op)
	if !ok {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.RLock()
	_, watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	event := Event{Path: path, Op: op, Time: w.clock.Now()}
	if w.debounce == 0 {
		w.emit(event)
		return
	}
	w.queue(event)
}

// queue holds ev until its file has been quiet for the debounce period.
// Every raw event starts a new timer; a timer whose sequence number is no
// longer the file's latest does nothing.
func (w *Watcher) queue(ev Event) {
	w.pendingMu.Lock()
	if prev, ok := w.pending[ev.Path]; ok {
		ev.Op = coalesce(prev.Op, ev.Op)
	}
	w.seq++
	seq := w.seq
	w.pending[ev.Path] = pendingEvent{Event: ev, seq: seq}
	w.pendingMu.Unlock()

	w.clock.AfterFunc(w.debounce, func() { w.flush(ev.Path, seq) })
}

func (w *Watcher) flush(path string, seq uint64) {
	w.pendingMu.Lock()
	p, ok := w.pending[path]
	if !ok || p.seq != seq {
		w.pendingMu.Unlock()
		return
	}
	delete(w.pending, path)
	w.pendingMu.Unlock()

	w.emit(p.Event)
}

func (w *Watcher) emit(event Event) {
	w.mu.RLock()
	handlers := append([]Handler(nil), w.handlers...)
	w.mu.RUnlock()

	for _, h := range handlers {
		w.call(h, event)
	}
}

// call runs one handler; a panicking handler is logged and skipped.
func (w *Watcher) call(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("change handler panicked on %s: %v", event.Path, r)
		}
	}()
	h(event)
}
