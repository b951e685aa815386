// Package notify delivers settings changes to the components that apply
// them.
//
// Observers subscribe to everything or to one settings section. A reload
// produces one ChangeSet per section whose values differ, followed by a
// ChangeReload. Observers run in subscription order.
package notify

import (
	"strings"
	"sync"
)

// ChangeType says what happened to the settings.
type ChangeType int

const (
	// ChangeSet reports a section whose values changed.
	ChangeSet ChangeType = iota

	// ChangeReload follows the section changes of a successful reload.
	ChangeReload

	// ChangeError reports a failed reload. The old settings stay.
	ChangeError
)

var changeTypeNames = [...]string{
	ChangeSet:    "set",
	ChangeReload: "reload",
	ChangeError:  "error",
}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeTypeNames) {
		return "unknown"
	}
	return changeTypeNames[c]
}

// Change is one settings event.
type Change struct {
	Type ChangeType

	// Path is the section that changed, for example "keyboard". It is
	// empty for reload and error events, which reach every observer.
	Path string

	// OldValue and NewValue hold the section before and after. Either may
	// be nil.
	OldValue any
	NewValue any

	// Source is a file path, "env" or "api".
	Source string

	Err error
}

// Observer receives changes.
type Observer func(change Change)

type subscriber struct {
	id   uint64
	path string
	fn   Observer
}

// wants reports whether s should see c.
func (s subscriber) wants(c Change) bool {
	return s.path == "" || c.Path == "" || s.path == c.Path || isParentPath(s.path, c.Path)
}

// Subscription is returned by Subscribe; keep it to unsubscribe.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe stops delivery. It is safe on a nil subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.remove(s.id)
}

// Notifier fans settings changes out to observers.
type Notifier struct {
	mu     sync.RWMutex
	subs   []subscriber
	lastID uint64
	closed bool

	async bool
	queue chan Change
	done  chan struct{}
	wg    sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync queues up to bufferSize changes and delivers them from a
// separate goroutine. Notify blocks when the queue is full.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize <= 0 {
			return
		}
		n.async = true
		n.queue = make(chan Change, bufferSize)
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{done: make(chan struct{})}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.drain()
	}
	return n
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add("", observer)
}

// SubscribePath registers an observer for one section and the paths under
// it. Reload and error events are delivered too.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	return n.add(path, observer)
}

func (n *Notifier) add(path string, fn Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastID++
	n.subs = append(n.subs, subscriber{id: n.lastID, path: path, fn: fn})
	return &Subscription{id: n.lastID, notifier: n}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Notify delivers change. Changes sent after Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}
	if !n.async {
		n.deliver(change)
		return
	}
	select {
	case n.queue <- change:
	case <-n.done:
	}
}

// NotifySet reports a changed section.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{Type: ChangeSet, Path: path, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReload reports a completed reload.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// NotifyError reports a failed reload.
func (n *Notifier) NotifyError(source string, err error) {
	n.Notify(Change{Type: ChangeError, Source: source, Err: err})
}

// Close stops delivery. Queued async changes are delivered first. Close
// may be called more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	targets := make([]Observer, 0, len(n.subs))
	for _, s := range n.subs {
		if s.wants(change) {
			targets = append(targets, s.fn)
		}
	}
	n.mu.RUnlock()

	for _, fn := range targets {
		fn(change)
	}
}

func (n *Notifier) drain() {
	defer n.wg.Done()
	for {
		select {
		case c := <-n.queue:
			n.deliver(c)
		case <-n.done:
			for {
				select {
				case c := <-n.queue:
					n.deliver(c)
				default:
					return
				}
			}
		}
	}
}

// isParentPath reports whether child lies under parent, so "keyboard" is
// the parent of "keyboard.long_press_mode". The empty path is everyone's
// parent.
func isParentPath(parent, child string) bool {
	if parent == "" {
		return true
	}
	rest, ok := strings.CutPrefix(child, parent)
	return ok && strings.HasPrefix(rest, ".")
}

// Batch holds the section changes of one reload until Commit. A batch
// belongs to one goroutine.
type Batch struct {
	notifier *Notifier
	changes  []Change
}

// NewBatch starts an empty batch.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Set queues a section change.
func (b *Batch) Set(path string, oldValue, newValue any, source string) {
	b.changes = append(b.changes, Change{
		Type:     ChangeSet,
		Path:     path,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// Len returns the number of queued changes.
func (b *Batch) Len() int { return len(b.changes) }

// Commit delivers the queued changes in order and empties the batch.
func (b *Batch) Commit() {
	changes := b.changes
	b.changes = nil
	for _, c := range changes {
		b.notifier.Notify(c)
	}
}
